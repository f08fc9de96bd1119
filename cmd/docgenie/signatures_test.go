package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignaturesCounts(t *testing.T) {
	out, err := execute(t, "signatures", "--counts", "--config", emptyConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "frameworks")
	assert.Contains(t, out, "ci_cd")
	assert.Contains(t, out, "total")
}

func TestSignaturesPrintsYAML(t *testing.T) {
	out, err := execute(t, "signatures", "--config", emptyConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "frameworks:")
	assert.Contains(t, out, "name: React")
}

func TestSignaturesReplaceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("testing:\n  - name: Ava\n    patterns: [\"ava\"]\n"), 0o644))

	out, err := execute(t, "signatures", "--counts", "--file", path, "--replace", "--config", emptyConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "testing         1\n")
	assert.Contains(t, out, "total           1\n")
}

func TestSignaturesInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("widgets:\n  - name: X\n    patterns: [\"x\"]\n"), 0o644))

	_, err := execute(t, "signatures", "--file", path, "--config", emptyConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown signature category")
}
