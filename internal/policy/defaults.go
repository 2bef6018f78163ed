package policy

import "github.com/icu-sec/icu/internal/rules"

// DefaultPolicy returns the built-in policy applied when no
// .icu-policy.yml is found anywhere up the directory tree.
func DefaultPolicy() Policy {
	return Policy{
		Version:       1,
		DefaultAction: ActionBlock,
		MaxRisk:       rules.RiskMedium,
		AllowShell:    false,
		DeepScan:      true,
		FileAccess: FileAccessPolicy{
			Deny: []string{
				"~/.ssh/*",
				"~/.aws/*",
				"~/.gnupg/*",
				"~/.config/gcloud/*",
				"**/.env",
				"**/.env.*",
				"**/credentials.json",
				"**/secrets.yml",
				"**/secrets.yaml",
			},
		},
		Network: NetworkPolicy{
			AllowNetwork: false,
			Deny:         []string{"*.onion", "*.i2p"},
		},
		Alerts: AlertsConfig{Console: true},
	}
}

// DefaultPolicyYAML is the commented YAML rendering of DefaultPolicy,
// suitable for an external bootstrap command to write out verbatim.
const DefaultPolicyYAML = `# ICU policy document.
version: 1

# Action taken when a scan produces at least one violation: log, warn, or block.
default_action: block

# Scans above this risk level are treated as a violation.
max_risk: medium

# Whether findings whose rule_id starts with SC- are permitted.
allow_shell: false

# Enable the entropy + deobfuscation deep pass.
deep_scan: true

# Per-tool overrides, evaluated first-match-wins in order.
tool_overrides: []

# File paths a tool call may touch. Deny wins unless allow also matches.
file_access:
  deny:
    - "~/.ssh/*"
    - "~/.aws/*"
    - "~/.gnupg/*"
    - "~/.config/gcloud/*"
    - "**/.env"
    - "**/.env.*"
    - "**/credentials.json"
    - "**/secrets.yml"
    - "**/secrets.yaml"
  allow: []

# Network-suspicious findings. deny always wins, even when
# allow_network is true.
network:
  allow_network: false
  allow: []
  deny:
    - "*.onion"
    - "*.i2p"

# Where violations are surfaced.
alerts:
  console: true
  # log_file: /var/log/icu/alerts.log
`
