package rules

import (
	"fmt"
	"log/slog"
	"regexp"
)

// CompiledRule pairs a DetectionRule with its compiled regular
// expression.
type CompiledRule struct {
	Rule DetectionRule
	Re   *regexp.Regexp
}

// RuleSet is an immutable, ordered collection of compiled rules:
// the static catalog followed by any dynamic threat signatures merged
// in at construction time.
type RuleSet struct {
	rules []CompiledRule
}

// Rules returns the compiled rules in catalog order.
func (s *RuleSet) Rules() []CompiledRule { return s.rules }

// Len returns the number of compiled rules in the set.
func (s *RuleSet) Len() int { return len(s.rules) }

// ThreatSignature is a dynamic rule learned at runtime and stored in
// the reputation database.
type ThreatSignature struct {
	ID          int64
	Name        string
	Pattern     string
	Category    Category
	Severity    Severity
	Description string
	Source      string
}

// Compiler builds RuleSets from the static catalog plus any dynamic
// signatures supplied at merge time. Regex compilation happens once,
// not per scan.
type Compiler struct {
	logger *slog.Logger
	static []CompiledRule
}

// NewCompiler compiles StaticRules once. A bad static pattern is a
// programming error and panics at construction, matching the
// fail-fast behavior the catalog's own author is responsible for.
func NewCompiler(logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Compiler{logger: logger}
	for _, r := range StaticRules {
		re := regexp.MustCompile(r.Pattern)
		c.static = append(c.static, CompiledRule{Rule: r, Re: re})
	}
	return c
}

// Merge returns a RuleSet containing the static catalog plus a
// compiled DetectionRule for each valid dynamic signature. Signatures
// whose pattern fails to compile are dropped and logged, never fatal.
func (c *Compiler) Merge(dynamic []ThreatSignature) *RuleSet {
	out := make([]CompiledRule, len(c.static), len(c.static)+len(dynamic))
	copy(out, c.static)

	for _, sig := range dynamic {
		re, err := regexp.Compile(sig.Pattern)
		if err != nil {
			c.logger.Warn("dropping invalid dynamic signature",
				"signature_id", sig.ID, "pattern", sig.Pattern, "error", err)
			continue
		}
		rule := DetectionRule{
			ID:          fmt.Sprintf("TS-%03d", sig.ID),
			Category:    sig.Category,
			Severity:    sig.Severity,
			Pattern:     sig.Pattern,
			Description: sig.Description,
		}
		out = append(out, CompiledRule{Rule: rule, Re: re})
	}

	return &RuleSet{rules: out}
}

// Static returns a RuleSet containing only the static catalog, with no
// dynamic signatures merged in.
func (c *Compiler) Static() *RuleSet {
	return c.Merge(nil)
}
