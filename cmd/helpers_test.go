package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// execute runs the shared root command with args and returns everything it printed.
// Flag values stick to the global command between runs, so callers order cases
// that set a flag after the ones that rely on its default.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func findCommand(t *testing.T, name string) *cobra.Command {
	t.Helper()
	found, _, err := NewRootCmd().Find([]string{name})
	require.NoError(t, err)
	require.Equal(t, name, found.Name())
	return found
}
