package policy

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/icu-sec/icu/internal/safefile"
)

var policyFileNames = []string{".icu-policy.yml", ".icu-policy.yaml"}

// LoadError wraps a policy document decode failure. Load always sets
// Section to "root": the failing top-level section is not singled
// out, and the wrapped decoder error carries the line and field.
type LoadError struct {
	Section string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("policy section %q: %v", e.Section, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Discover walks up from startDir looking for a policy file, falling
// back to ~/.config/icu/policy.yml, then to DefaultPolicy.
func Discover(startDir string) (Policy, string, error) {
	dir := startDir
	for {
		for _, name := range policyFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				p, err := Load(candidate, dir)
				return p, candidate, err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".config", "icu", "policy.yml")
		if _, err := os.Stat(candidate); err == nil {
			p, err := Load(candidate, startDir)
			return p, candidate, err
		}
	}

	return DefaultPolicy(), "", nil
}

// Load reads and strictly decodes a policy document at path, expanding
// ${PROJECT_DIR} and ~ in every path-valued field relative to
// projectDir.
func Load(path, projectDir string) (Policy, error) {
	raw, err := safefile.ReadFileMax(path, 1<<20)
	if err != nil {
		return Policy{}, fmt.Errorf("reading policy file: %w", err)
	}

	var p Policy
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Policy{}, &LoadError{Section: "root", Err: err}
	}

	if p.Version == 0 {
		p.Version = 1
	}
	if p.DefaultAction == "" {
		p.DefaultAction = ActionWarn
	}
	if p.MaxRisk == "" {
		p.MaxRisk = DefaultPolicy().MaxRisk
	}

	p.FileAccess.Allow = expandAll(p.FileAccess.Allow, projectDir)
	p.FileAccess.Deny = expandAll(p.FileAccess.Deny, projectDir)
	p.Network.Allow = expandAll(p.Network.Allow, projectDir)
	p.Network.Deny = expandAll(p.Network.Deny, projectDir)
	if p.Alerts.LogFile != "" {
		p.Alerts.LogFile = expand(p.Alerts.LogFile, projectDir)
	}

	return p, nil
}

// expand applies ${PROJECT_DIR} and ~ expansion to a single
// path-valued pattern.
func expand(pattern, projectDir string) string {
	pattern = strings.ReplaceAll(pattern, "${PROJECT_DIR}", projectDir)
	if strings.HasPrefix(pattern, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			pattern = filepath.Join(home, pattern[2:])
		}
	}
	return pattern
}

func expandAll(patterns []string, projectDir string) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = expand(p, projectDir)
	}
	return out
}

// ValidatePolicy returns non-fatal warnings about a loaded policy:
// unknown actions/risk levels, suspicious tool overrides, or a network
// policy with no deny patterns at all. Ported from the original's
// validate_policy — surfaces operator mistakes without failing load.
func ValidatePolicy(p Policy) []string {
	var warnings []string

	if _, ok := actionOrder[p.DefaultAction]; !ok {
		warnings = append(warnings, fmt.Sprintf("unknown default_action %q", p.DefaultAction))
	}
	validRisk := map[string]bool{"clean": true, "low": true, "medium": true, "high": true, "critical": true}
	if !validRisk[string(p.MaxRisk)] {
		warnings = append(warnings, fmt.Sprintf("unknown max_risk %q", p.MaxRisk))
	}
	for _, o := range p.ToolOverrides {
		if o.Tool == "" {
			warnings = append(warnings, "tool_override missing tool name")
		}
		if o.Action != "" {
			if _, ok := actionOrder[o.Action]; !ok {
				warnings = append(warnings, fmt.Sprintf("tool override %q has unknown action %q", o.Tool, o.Action))
			}
		}
	}
	if p.Network.AllowNetwork && len(p.Network.Deny) == 0 {
		warnings = append(warnings, "allow_network is true with no network.deny patterns set")
	}

	return warnings
}
