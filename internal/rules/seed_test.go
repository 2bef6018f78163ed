package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedSignatures_ParsesEmbeddedYAML(t *testing.T) {
	sigs, err := SeedSignatures()
	require.NoError(t, err)
	require.NotEmpty(t, sigs)

	for i, sig := range sigs {
		assert.Equal(t, int64(i+1), sig.ID)
		assert.NotEmpty(t, sig.Pattern)
		assert.NotEmpty(t, sig.Description)
	}
}
