package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/icu-sec/icu/internal/rules"
)

var networkPrefixes = []string{"NS-", "DE-010", "DE-011", "DE-012"}
var shellPrefix = "SC-"

// Evaluator evaluates scan results against a loaded Policy.
type Evaluator struct {
	policy Policy
}

// NewEvaluator builds an Evaluator over policy.
func NewEvaluator(policy Policy) *Evaluator {
	return &Evaluator{policy: policy}
}

// Evaluate runs the six-step evaluation order: tool-override
// resolution, then risk, file-access, network, and shell checks, in
// that sequence. The final action is the policy's (or the matched
// override's) effective action if any check produced a violation,
// otherwise "log".
func (e *Evaluator) Evaluate(result rules.ScanResult, toolName string) PolicyResult {
	effectiveAction := e.policy.DefaultAction
	maxRisk := e.policy.MaxRisk
	allowNetwork := e.policy.Network.AllowNetwork
	allowShell := e.policy.AllowShell

	for _, o := range e.policy.ToolOverrides {
		if o.Tool != toolName {
			continue
		}
		if o.Action != "" {
			effectiveAction = o.Action
		}
		if o.MaxRisk != "" {
			maxRisk = o.MaxRisk
		}
		if o.AllowNetwork != nil {
			allowNetwork = *o.AllowNetwork
		}
		if o.AllowShell != nil {
			allowShell = *o.AllowShell
		}
		break
	}

	var violations []PolicyViolation

	// Step 2: risk check.
	if riskExceeds(result.RiskLevel, maxRisk) {
		violations = append(violations, PolicyViolation{
			Rule:        "risk_level",
			Description: fmt.Sprintf("Risk level %q exceeds maximum %q", result.RiskLevel, maxRisk),
			Severity:    string(result.RiskLevel),
		})
	}

	// Step 3: file access check.
	path := expandTilde(result.Path)
	if matchesAny(path, e.policy.FileAccess.Deny) && !matchesAny(path, e.policy.FileAccess.Allow) {
		violations = append(violations, PolicyViolation{
			Rule:        "file_access",
			Description: fmt.Sprintf("File %q matches a denied file_access pattern", result.Path),
			Severity:    "critical",
		})
	}

	// Step 4: network check. deny always wins, even over allow_network.
	for _, f := range result.Findings {
		if !hasAnyPrefix(f.RuleID, networkPrefixes) {
			continue
		}
		if matchesAny(f.MatchedText, e.policy.Network.Deny) {
			violations = append(violations, PolicyViolation{
				Rule:        "network_deny",
				Description: fmt.Sprintf("Network finding [%s] matches an explicit network.deny pattern", f.RuleID),
				Severity:    string(f.Severity),
			})
			continue
		}
		if allowNetwork {
			continue
		}
		if matchesAny(f.MatchedText, e.policy.Network.Allow) {
			continue
		}
		violations = append(violations, PolicyViolation{
			Rule:        "network",
			Description: fmt.Sprintf("Network-suspicious finding [%s] not permitted by policy", f.RuleID),
			Severity:    string(f.Severity),
		})
	}

	// Step 5: shell check — a plain boolean gate, not a glob list.
	if !allowShell {
		for _, f := range result.Findings {
			if !strings.HasPrefix(f.RuleID, shellPrefix) {
				continue
			}
			violations = append(violations, PolicyViolation{
				Rule:        "shell",
				Description: fmt.Sprintf("Shell-related finding [%s]: %s", f.RuleID, f.Description),
				Severity:    string(f.Severity),
			})
		}
	}

	// Step 6: final action.
	action := ActionLog
	if len(violations) > 0 {
		action = effectiveAction
	}

	return PolicyResult{Action: action, Violations: violations}
}

// ShouldDeepScan reports whether the policy's defaults enable the
// entropy + deobfuscation pass.
func (e *Evaluator) ShouldDeepScan() bool {
	return e.policy.DeepScan
}

// LogViolations appends one line per violation across results to the
// policy's configured alerts.log_file, in
// "timestamp [severity] file: rule - description" form. A no-op if no
// log file is configured, and it never creates the file when there is
// nothing to log.
func (e *Evaluator) LogViolations(results []rules.ScanResult, decisions []PolicyResult) error {
	if e.policy.Alerts.LogFile == "" {
		return nil
	}

	var lines []string
	for i, decision := range decisions {
		if i >= len(results) {
			break
		}
		for _, v := range decision.Violations {
			lines = append(lines, fmt.Sprintf("%s [%s] %s: %s - %s",
				time.Now().UTC().Format(time.RFC3339), v.Severity, results[i].Path, v.Rule, v.Description))
		}
	}
	if len(lines) == 0 {
		return nil
	}

	f, err := os.OpenFile(e.policy.Alerts.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening alerts log: %w", err)
	}
	defer f.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("writing alerts log: %w", err)
		}
	}
	return nil
}

// expandTilde expands a leading ~/ against the current user's home
// directory. Unlike loader.expand, it has no ${PROJECT_DIR} to
// resolve — Evaluate only ever sees an already-resolved scan path.
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func riskExceeds(have, max rules.RiskLevel) bool {
	order := map[rules.RiskLevel]int{
		rules.RiskClean: 0, rules.RiskLow: 1, rules.RiskMedium: 2, rules.RiskHigh: 3, rules.RiskCritical: 4,
	}
	return order[have] > order[max]
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// matchesAny reports whether s matches any of the glob patterns.
func matchesAny(s string, patterns []string) bool {
	for _, pat := range patterns {
		if globMatch(pat, s) {
			return true
		}
	}
	return false
}

func globMatch(pattern, s string) bool {
	re, err := regexp.Compile("^" + globToRegex(pattern) + "$")
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// globToRegex translates a shell-style glob into an anchored regex
// fragment. "**" crosses path separators; a lone "*" does not, so
// "/etc/*" matches "/etc/passwd" but not "/etc/ssh/sshd_config".
// "?" matches exactly one non-separator character. "[...]" bracket
// expressions pass through mostly verbatim, with a leading "!"
// translated to the "^" Go's regexp expects.
func globToRegex(pattern string) string {
	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := i + 1
			if end < len(runes) && (runes[end] == '!' || runes[end] == '^') {
				end++
			}
			if end < len(runes) && runes[end] == ']' {
				end++
			}
			for end < len(runes) && runes[end] != ']' {
				end++
			}
			if end >= len(runes) {
				// Unterminated bracket expression: treat '[' literally.
				b.WriteString(regexp.QuoteMeta(string(r)))
				continue
			}
			class := runes[i+1 : end]
			b.WriteByte('[')
			if len(class) > 0 && class[0] == '!' {
				b.WriteByte('^')
				class = class[1:]
			}
			b.WriteString(string(class))
			b.WriteByte(']')
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}
