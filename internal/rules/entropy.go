package rules

import (
	"math"
	"regexp"
	"strings"
)

// DefaultEntropyThreshold is the bits-per-character threshold above
// which a string literal is flagged as likely encoded/obfuscated
// payload.
const DefaultEntropyThreshold = 4.5

var (
	quotedStringRe = regexp.MustCompile(`"""(?s).*?"""|'''(?s).*?'''|"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`)
	longTokenRe    = regexp.MustCompile(`[A-Za-z0-9+/=_-]{20,}`)
)

// ShannonEntropy returns the entropy of s in bits per character.
func ShannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}
	var h float64
	for _, c := range counts {
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// extractStringLiterals finds candidate substrings to entropy-check:
// first quoted strings, then long unbroken tokens whose start offset
// does not fall inside a quoted match.
func extractStringLiterals(content string) []string {
	var out []string
	var quoted [][]int

	for _, loc := range quotedStringRe.FindAllStringIndex(content, -1) {
		quoted = append(quoted, loc)
		lit := content[loc[0]:loc[1]]
		out = append(out, trimQuotes(lit))
	}
tokens:
	for _, loc := range longTokenRe.FindAllStringIndex(content, -1) {
		for _, q := range quoted {
			if loc[0] >= q[0] && loc[0] < q[1] {
				continue tokens
			}
		}
		out = append(out, content[loc[0]:loc[1]])
	}
	return out
}

func trimQuotes(s string) string {
	for _, q := range []string{`"""`, `'''`} {
		if len(s) >= 2*len(q) && s[:len(q)] == q && s[len(s)-len(q):] == q {
			return s[len(q) : len(s)-len(q)]
		}
	}
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

// Entropy scans content for high-entropy string literals and returns
// an EN-001 finding (severity warning) for each one above threshold.
func Entropy(content string, threshold float64) []Finding {
	var findings []Finding
	lines := splitLinesKeepingOffsets(content)

	for _, lit := range extractStringLiterals(content) {
		if len(lit) < 20 {
			continue
		}
		h := ShannonEntropy(lit)
		if h <= threshold {
			continue
		}
		lineNo := locateLine(content, lit, lines)
		findings = append(findings, Finding{
			RuleID:      "EN-001",
			Category:    CategoryObfuscation,
			Severity:    SeverityWarning,
			LineNumber:  lineNo,
			MatchedText: truncate(lit, maxMatchRunes),
			Description: "High-entropy string literal, possible encoded payload",
		})
	}
	return findings
}

type lineOffset struct {
	start, end int
}

func splitLinesKeepingOffsets(content string) []lineOffset {
	var offs []lineOffset
	start := 0
	for i, r := range content {
		if r == '\n' {
			offs = append(offs, lineOffset{start, i})
			start = i + 1
		}
	}
	offs = append(offs, lineOffset{start, len(content)})
	return offs
}

func locateLine(content, lit string, offs []lineOffset) int {
	idx := strings.Index(content, lit)
	if idx < 0 {
		return 1
	}
	return lineForOffset(offs, idx)
}

// lineForOffset returns the 1-based line number containing the given
// byte offset into the content offs was built from.
func lineForOffset(offs []lineOffset, offset int) int {
	if offset < 0 {
		return 1
	}
	for i, o := range offs {
		if offset >= o.start && offset <= o.end {
			return i + 1
		}
	}
	return 1
}
