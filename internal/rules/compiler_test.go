package rules

import (
	"log/slog"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCompiler_Static_MatchesCatalogLength(t *testing.T) {
	c := NewCompiler(discardLogger())
	rs := c.Static()
	assert.Equal(t, len(StaticRules), rs.Len())
}

func TestCompiler_Merge_DropsInvalidDynamicPattern(t *testing.T) {
	c := NewCompiler(discardLogger())
	dynamic := []ThreatSignature{
		{ID: 1, Pattern: `valid\d+`, Category: CategorySuspiciousCommand, Severity: SeverityWarning, Description: "ok"},
		{ID: 2, Pattern: `(unterminated`, Category: CategorySuspiciousCommand, Severity: SeverityWarning, Description: "bad"},
	}
	rs := c.Merge(dynamic)
	require.Equal(t, len(StaticRules)+1, rs.Len())
}

func TestCompiler_Merge_AssignsThreatSignatureIDs(t *testing.T) {
	c := NewCompiler(discardLogger())
	dynamic := []ThreatSignature{
		{ID: 1, Pattern: `abc`, Category: CategoryObfuscation, Severity: SeverityWarning, Description: "x"},
	}
	rs := c.Merge(dynamic)
	found := false
	for _, cr := range rs.Rules() {
		if cr.Rule.ID == "TS-001" {
			found = true
		}
	}
	assert.True(t, found, "expected a TS-001 rule in the merged set")
}
