package rules

// StaticRules is the built-in detection catalog. It is never loaded
// from YAML: the rule IDs, patterns, and severities are part of the
// program itself, compiled once per Compiler by NewCompiler.
var StaticRules = []DetectionRule{
	// --- prompt_injection ---
	{ID: "PI-001", Category: CategoryPromptInjection, Severity: SeverityDanger,
		Pattern:     `(?i)ignore\s+(all\s+)?(previous|prior|above)\s+instructions`,
		Description: "Attempt to override prior instructions"},
	{ID: "PI-002", Category: CategoryPromptInjection, Severity: SeverityDanger,
		Pattern:     `(?i)disregard\s+(all\s+)?(previous|prior|your)\s+(instructions|guidelines|rules)`,
		Description: "Attempt to discard system guidance"},
	{ID: "PI-003", Category: CategoryPromptInjection, Severity: SeverityDanger,
		Pattern:     `(?i)you\s+are\s+now\s+(in\s+)?(developer|debug|admin|unrestricted|DAN)\s*mode`,
		Description: "Attempt to switch assistant into an unrestricted persona"},
	{ID: "PI-004", Category: CategoryPromptInjection, Severity: SeverityWarning,
		Pattern:     `(?i)system\s*prompt\s*:\s*`,
		Description: "Embedded fake system prompt delimiter"},
	{ID: "PI-005", Category: CategoryPromptInjection, Severity: SeverityDanger,
		Pattern:     `(?i)reveal\s+(your\s+)?(system\s+prompt|instructions|hidden\s+prompt)`,
		Description: "Attempt to exfiltrate the system prompt"},
	{ID: "PI-006", Category: CategoryPromptInjection, Severity: SeverityWarning,
		Pattern:     `(?i)\bact\s+as\s+(if\s+you\s+(are|were)|an?)\s+.*\b(unfiltered|jailbroken|uncensored)\b`,
		Description: "Jailbreak persona request"},
	{ID: "PI-007", Category: CategoryPromptInjection, Severity: SeverityDanger,
		Pattern:     `(?i)\[\[?SYSTEM\]?\]|\{\{?SYSTEM\}?\}|<\|system\|>`,
		Description: "Fake system-role delimiter injection"},
	{ID: "PI-008", Category: CategoryPromptInjection, Severity: SeverityWarning,
		Pattern:     `(?i)do\s+not\s+(tell|inform|mention\s+to)\s+the\s+user`,
		Description: "Instruction to withhold information from the user"},

	// --- data_exfiltration ---
	{ID: "DE-001", Category: CategoryDataExfiltration, Severity: SeverityDanger,
		Pattern:     `(?i)sk-ant-[a-zA-Z0-9_-]{20,}`,
		Description: "Anthropic API key literal"},
	{ID: "DE-002", Category: CategoryDataExfiltration, Severity: SeverityDanger,
		Pattern:     `(?i)sk-[a-zA-Z0-9]{20,}`,
		Description: "OpenAI-style API key literal"},
	{ID: "DE-003", Category: CategoryDataExfiltration, Severity: SeverityDanger,
		Pattern:     `(?i)gh[pousr]_[a-zA-Z0-9]{20,}`,
		Description: "GitHub token literal"},
	{ID: "DE-004", Category: CategoryDataExfiltration, Severity: SeverityDanger,
		Pattern:     `(?i)AKIA[0-9A-Z]{16}`,
		Description: "AWS access key ID literal"},
	{ID: "DE-005", Category: CategoryDataExfiltration, Severity: SeverityDanger,
		Pattern:     `(?i)xox[baps]-[a-zA-Z0-9-]{10,}`,
		Description: "Slack token literal"},
	{ID: "DE-006", Category: CategoryDataExfiltration, Severity: SeverityDanger,
		Pattern:     `(?i)-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE\s+KEY-----`,
		Description: "Embedded private key material"},
	{ID: "DE-007", Category: CategoryDataExfiltration, Severity: SeverityWarning,
		Pattern:     `(?i)(password|passwd|secret|api_key|apikey|token)\s*[:=]\s*["'][^"'\s]{8,}["']`,
		Description: "Hardcoded credential-like assignment"},
	{ID: "DE-008", Category: CategoryDataExfiltration, Severity: SeverityDanger,
		Pattern:     `(?i)(curl|wget|fetch|requests\.(get|post))\s+.*\b(env|environ|os\.environ|process\.env)\b`,
		Description: "Exfiltration of environment variables to a remote endpoint"},
	{ID: "DE-009", Category: CategoryDataExfiltration, Severity: SeverityWarning,
		Pattern:     `(?i)\.ssh/(id_rsa|id_ed25519|authorized_keys)\b`,
		Description: "Reference to SSH key material"},
	{ID: "DE-010", Category: CategoryDataExfiltration, Severity: SeverityDanger,
		Pattern:     `(?i)(send|post|upload|exfiltrate)\w*\s*\(.*\b(credential|secret|token|password)\w*`,
		Description: "Credential-bearing network call"},
	{ID: "DE-011", Category: CategoryDataExfiltration, Severity: SeverityWarning,
		Pattern:     `(?i)webhook\.site|requestbin\.com|pipedream\.net`,
		Description: "Known exfiltration-collector domain"},
	{ID: "DE-012", Category: CategoryDataExfiltration, Severity: SeverityDanger,
		Pattern:     `(?i)base64\.(b64encode|encode)\(.{0,40}(read\(\)|getenv|environ)`,
		Description: "Encoding of sensitive data prior to transmission"},

	// --- obfuscation ---
	{ID: "OB-001", Category: CategoryObfuscation, Severity: SeverityWarning,
		Pattern:     `(?i)\\x[0-9a-f]{2}(\\x[0-9a-f]{2}){5,}`,
		Description: "Long run of hex-escaped characters"},
	{ID: "OB-002", Category: CategoryObfuscation, Severity: SeverityWarning,
		Pattern:     `(?i)\\u[0-9a-f]{4}(\\u[0-9a-f]{4}){5,}`,
		Description: "Long run of unicode-escaped characters"},
	{ID: "OB-003", Category: CategoryObfuscation, Severity: SeverityWarning,
		Pattern:     `(?i)(eval|exec)\s*\(\s*(base64|codecs|atob)`,
		Description: "Dynamic execution of decoded content"},
	{ID: "OB-004", Category: CategoryObfuscation, Severity: SeverityInfo,
		Pattern:     `[\x{200b}\x{200c}\x{200d}\x{feff}]`,
		Description: "Zero-width character present"},

	// --- suspicious_commands ---
	{ID: "SC-001", Category: CategorySuspiciousCommand, Severity: SeverityDanger,
		Pattern:     `(?i)rm\s+-rf\s+(/|~|\$HOME|\*)`,
		Description: "Recursive forced delete of a broad path"},
	{ID: "SC-002", Category: CategorySuspiciousCommand, Severity: SeverityDanger,
		Pattern:     `(?i)curl\s+.*\|\s*(sh|bash|zsh)\b`,
		Description: "Pipe remote script directly into a shell"},
	{ID: "SC-003", Category: CategorySuspiciousCommand, Severity: SeverityWarning,
		Pattern:     `(?i)chmod\s+(-R\s+)?777\b`,
		Description: "World-writable permission change"},
	{ID: "SC-004", Category: CategorySuspiciousCommand, Severity: SeverityDanger,
		Pattern:     `(?i)sudo\s+.*passwd|usermod\s+-aG\s+sudo`,
		Description: "Privilege escalation attempt"},
	{ID: "SC-005", Category: CategorySuspiciousCommand, Severity: SeverityWarning,
		Pattern:     `(?i)crontab\s+-|echo\s+.*>>\s*/etc/cron`,
		Description: "Persistence via scheduled task"},
	{ID: "SC-006", Category: CategorySuspiciousCommand, Severity: SeverityDanger,
		Pattern:     `(?i):\(\)\s*\{\s*:\|\:&\s*\};\s*:`,
		Description: "Fork bomb pattern"},

	// --- network_suspicious ---
	{ID: "NS-001", Category: CategoryNetworkSuspicious, Severity: SeverityWarning,
		Pattern:     `(?i)\bsocket\.(socket|connect)\s*\(`,
		Description: "Raw socket construction"},
	{ID: "NS-002", Category: CategoryNetworkSuspicious, Severity: SeverityDanger,
		Pattern:     `(?i)reverse\s+shell|nc\s+-e\s+/bin/(ba)?sh`,
		Description: "Reverse shell pattern"},
	{ID: "NS-003", Category: CategoryNetworkSuspicious, Severity: SeverityWarning,
		Pattern:     `(?i)\b(\d{1,3}\.){3}\d{1,3}:\d{2,5}\b`,
		Description: "Hardcoded IP:port endpoint"},
	{ID: "NS-004", Category: CategoryNetworkSuspicious, Severity: SeverityWarning,
		Pattern:     `(?i)DNS\s+tunnel|dnscat|iodine\b`,
		Description: "DNS tunneling indicator"},
	{ID: "NS-005", Category: CategoryNetworkSuspicious, Severity: SeverityWarning,
		Pattern:     `(?i)\.onion\b`,
		Description: "Tor hidden-service address"},
	{ID: "NS-006", Category: CategoryNetworkSuspicious, Severity: SeverityDanger,
		Pattern:     `(?i)ngrok\.io|localtunnel\.me|serveo\.net`,
		Description: "Tunneling service used to expose a local port"},
	{ID: "NS-007", Category: CategoryNetworkSuspicious, Severity: SeverityWarning,
		Pattern:     `(?i)urllib\.request\.urlopen\(|requests\.get\(.*verify\s*=\s*False`,
		Description: "Network request with certificate verification disabled"},
}
