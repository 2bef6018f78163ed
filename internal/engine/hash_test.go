package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashContent_IsStableAndDeterministic(t *testing.T) {
	a := HashContent("hello world")
	b := HashContent("hello world")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, HashContent("hello there"))
}

func TestHashFile_MatchesHashContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte("agent payload"), 0o644))

	fromFile, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, HashContent("agent payload"), fromFile)
}
