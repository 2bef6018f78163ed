package rules

import (
	"embed"

	"gopkg.in/yaml.v3"
)

//go:embed seed_signatures.yaml
var seedFS embed.FS

// seedSignature mirrors the shape of a seed entry in
// seed_signatures.yaml.
type seedSignature struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Category    string `yaml:"category"`
	Severity    string `yaml:"severity"`
	Description string `yaml:"description"`
	Source      string `yaml:"source"`
}

// SeedSignatures decodes the embedded default dynamic-signature set.
// These are the signatures a fresh reputation store is seeded with
// when its threat_signatures table is empty.
func SeedSignatures() ([]ThreatSignature, error) {
	raw, err := seedFS.ReadFile("seed_signatures.yaml")
	if err != nil {
		return nil, err
	}

	var entries []seedSignature
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	out := make([]ThreatSignature, 0, len(entries))
	for i, e := range entries {
		source := e.Source
		if source == "" {
			source = "local"
		}
		out = append(out, ThreatSignature{
			ID:          int64(i + 1),
			Name:        e.Name,
			Pattern:     e.Pattern,
			Category:    Category(e.Category),
			Severity:    Severity(e.Severity),
			Description: e.Description,
			Source:      source,
		})
	}
	return out, nil
}
