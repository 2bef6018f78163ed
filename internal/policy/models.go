// Package policy implements ICU's declarative policy engine: loading
// YAML policy documents and evaluating a ScanResult against them to
// produce a log/warn/block decision.
package policy

import (
	"github.com/icu-sec/icu/internal/rules"
)

// Action is the decision a policy evaluation can produce.
type Action string

const (
	ActionLog   Action = "log"
	ActionWarn  Action = "warn"
	ActionBlock Action = "block"
)

var actionOrder = map[Action]int{
	ActionLog:   0,
	ActionWarn:  1,
	ActionBlock: 2,
}

// Stricter reports whether a sorts after b in log<warn<block order.
func Stricter(a, b Action) bool {
	return actionOrder[a] > actionOrder[b]
}

// ToolOverride replaces the default policy's thresholds for calls
// naming a specific tool. Nil fields fall through to the policy's
// defaults; deep_scan has no per-tool override in the spec's contract.
type ToolOverride struct {
	Tool         string          `yaml:"tool"`
	Action       Action          `yaml:"action,omitempty"`
	MaxRisk      rules.RiskLevel `yaml:"max_risk,omitempty"`
	AllowNetwork *bool           `yaml:"allow_network,omitempty"`
	AllowShell   *bool           `yaml:"allow_shell,omitempty"`
}

// FileAccessPolicy controls which paths a tool call may reference.
type FileAccessPolicy struct {
	Allow []string `yaml:"allow,omitempty"`
	Deny  []string `yaml:"deny,omitempty"`
}

// NetworkPolicy controls which network-suspicious findings are
// permitted. Deny always wins over Allow and over AllowNetwork — the
// richer variant specified by the system.
type NetworkPolicy struct {
	AllowNetwork bool     `yaml:"allow_network"`
	Allow        []string `yaml:"allow,omitempty"`
	Deny         []string `yaml:"deny,omitempty"`
}

// AlertsConfig controls where a decision's violations are surfaced.
// Console rendering itself is a presentation-layer concern outside the
// core; this only records the operator's configured intent.
type AlertsConfig struct {
	Console bool   `yaml:"console"`
	LogFile string `yaml:"log_file,omitempty"`
}

// Policy is a fully loaded, expanded policy document.
type Policy struct {
	Version       int              `yaml:"version"`
	DefaultAction Action           `yaml:"default_action"`
	MaxRisk       rules.RiskLevel  `yaml:"max_risk"`
	AllowShell    bool             `yaml:"allow_shell"`
	DeepScan      bool             `yaml:"deep_scan"`
	ToolOverrides []ToolOverride   `yaml:"tool_overrides,omitempty"`
	FileAccess    FileAccessPolicy `yaml:"file_access,omitempty"`
	Network       NetworkPolicy    `yaml:"network,omitempty"`
	Alerts        AlertsConfig     `yaml:"alerts,omitempty"`
}

// PolicyViolation names a single reason a decision escalated. Severity
// is loose by design: a risk_level violation carries a RiskLevel
// string, a file_access violation is always "critical", and
// network/shell violations inherit the triggering Finding's severity.
type PolicyViolation struct {
	Rule        string
	Description string
	Severity    string
}

// PolicyResult is the outcome of evaluating a ScanResult against a
// Policy.
type PolicyResult struct {
	Action     Action
	Violations []PolicyViolation
}

// ToMap renders a Policy the way Python's Policy.to_dict does: tool
// overrides with nil fields omitted, list order preserved.
func (p Policy) ToMap() map[string]any {
	overrides := make([]map[string]any, 0, len(p.ToolOverrides))
	for _, o := range p.ToolOverrides {
		m := map[string]any{"tool": o.Tool}
		if o.Action != "" {
			m["action"] = string(o.Action)
		}
		if o.MaxRisk != "" {
			m["max_risk"] = string(o.MaxRisk)
		}
		if o.AllowNetwork != nil {
			m["allow_network"] = *o.AllowNetwork
		}
		if o.AllowShell != nil {
			m["allow_shell"] = *o.AllowShell
		}
		overrides = append(overrides, m)
	}

	return map[string]any{
		"version": p.Version,
		"defaults": map[string]any{
			"action":         string(p.DefaultAction),
			"allow_network":  p.Network.AllowNetwork,
			"allow_shell":    p.AllowShell,
			"max_risk_level": string(p.MaxRisk),
			"deep_scan":      p.DeepScan,
		},
		"tool_overrides": overrides,
		"file_access": map[string]any{
			"allow": p.FileAccess.Allow,
			"deny":  p.FileAccess.Deny,
		},
		"network": map[string]any{
			"allow": p.Network.Allow,
			"deny":  p.Network.Deny,
		},
		"alerts": map[string]any{
			"console":  p.Alerts.Console,
			"log_file": p.Alerts.LogFile,
		},
	}
}

// ToMap renders a PolicyResult as a plain map for external formatters.
func (r PolicyResult) ToMap() map[string]any {
	violations := make([]map[string]any, 0, len(r.Violations))
	for _, v := range r.Violations {
		violations = append(violations, map[string]any{
			"rule":        v.Rule,
			"description": v.Description,
			"severity":    v.Severity,
		})
	}
	return map[string]any{
		"action":     string(r.Action),
		"passed":     r.Action == ActionLog,
		"violations": violations,
	}
}
