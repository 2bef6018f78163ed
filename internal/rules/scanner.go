package rules

import (
	"strconv"
	"strings"
)

const (
	contextWindow  = 2
	maxMatchRunes  = 200
	truncateSuffix = "..."
)

// Scanner runs the compiled rule set against content one line at a
// time, emitting at most one Finding per (line, rule) pair.
type Scanner struct {
	ruleSet *RuleSet
}

// NewScanner builds a Scanner over the given compiled rule set.
func NewScanner(ruleSet *RuleSet) *Scanner {
	return &Scanner{ruleSet: ruleSet}
}

// Scan runs every compiled rule against each line of content in turn,
// in rule-catalog order within a line, lines in ascending order.
func (s *Scanner) Scan(content string) []Finding {
	lines := strings.Split(content, "\n")
	var findings []Finding

	for idx, line := range lines {
		for _, cr := range s.ruleSet.Rules() {
			loc := cr.Re.FindStringIndex(line)
			if loc == nil {
				continue
			}
			matched := line[loc[0]:loc[1]]
			findings = append(findings, Finding{
				RuleID:      cr.Rule.ID,
				Category:    cr.Rule.Category,
				Severity:    cr.Rule.Severity,
				LineNumber:  idx + 1,
				MatchedText: truncate(matched, maxMatchRunes),
				Description: cr.Rule.Description,
				Context:     getContext(lines, idx, contextWindow),
			})
		}
	}
	return findings
}

// truncate cuts s to at most maxRunes runes, appending "..." when it
// does.
func truncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes]) + truncateSuffix
}

// getContext renders a ±window block of lines around idx with a
// ">>> N: " marker on the matched line and "    N: " on the rest.
func getContext(lines []string, idx, window int) string {
	start := idx - window
	if start < 0 {
		start = 0
	}
	end := idx + window
	if end > len(lines)-1 {
		end = len(lines) - 1
	}

	var b strings.Builder
	for i := start; i <= end; i++ {
		if i == idx {
			b.WriteString(">>> ")
		} else {
			b.WriteString("    ")
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(lines[i])
		if i != end {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
