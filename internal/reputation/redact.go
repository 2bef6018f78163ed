package reputation

import "regexp"

// credentialPatterns matches known API key and secret formats so they
// can be redacted before a finding's matched text is written to disk.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]{10,}`),
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{10,}`),
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{10,}`),
	regexp.MustCompile(`github_pat_[a-zA-Z0-9_]{10,}`),
	regexp.MustCompile(`AKIA[0-9A-Z]{4,}`),
	regexp.MustCompile(`xox[bpas]-[a-zA-Z0-9-]{10,}`),
	regexp.MustCompile(`-----BEGIN[A-Z ]*PRIVATE KEY-----`),
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]{20,}\.[a-zA-Z0-9_-]{20,}`),
}

// redactCredential truncates any credential-shaped substring of s to
// its first few characters plus "***".
func redactCredential(s string) string {
	for _, re := range credentialPatterns {
		s = re.ReplaceAllStringFunc(s, func(match string) string {
			if len(match) > 10 {
				return match[:10] + "***"
			}
			return match[:4] + "***"
		})
	}
	return s
}
