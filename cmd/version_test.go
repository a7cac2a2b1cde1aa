package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	Version, GitCommit = "1.2.0", "abc1234"
	t.Cleanup(func() { Version, GitCommit = "dev", "unknown" })

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Podcast Analyzer")
	assert.Contains(t, out, "Version:      v1.2.0")
	assert.Contains(t, out, "Git Commit:   abc1234")

	out, err = execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0\n", out)
}

func TestVersionCommandFlags(t *testing.T) {
	short := findCommand(t, "version").Flags().ShorthandLookup("s")
	if assert.NotNil(t, short) {
		assert.Equal(t, "short", short.Name)
	}
}

func TestBuildAge(t *testing.T) {
	assert.Equal(t, "unknown", buildAge("unknown"))

	built := time.Now().Add(-3 * time.Hour).UTC().Format(time.RFC3339)
	assert.Equal(t, built+" (3 hours ago)", buildAge(built))
}
