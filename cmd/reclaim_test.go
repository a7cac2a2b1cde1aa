package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/podcast-analyzer/internal/services/reclaimer"
)

func TestReclaimCommandFlags(t *testing.T) {
	reclaimCmd := findCommand(t, "reclaim")

	includeFailed := reclaimCmd.Flags().Lookup("include-failed")
	require.NotNil(t, includeFailed)
	assert.Equal(t, "false", includeFailed.DefValue)

	staleAfter := reclaimCmd.Flags().Lookup("stale-after")
	require.NotNil(t, staleAfter)
	assert.Equal(t, time.Duration(0).String(), staleAfter.DefValue)
}

func TestPrintReclaimResult(t *testing.T) {
	tests := []struct {
		name     string
		result   *reclaimer.Result
		contains []string
		absent   []string
	}{
		{
			name: "reset items",
			result: &reclaimer.Result{
				StaleAfter:     "30m0s",
				EpisodesReset:  []uint{4, 7},
				DigestsFailed:  []uint{2},
				FailedRequeued: []uint{},
			},
			contains: []string{"stale after 30m0s", "Episodes reset:   2 [4 7]", "Digests failed:   1 [2]"},
			absent:   []string{"Skipped in flight"},
		},
		{
			name:     "held items are reported",
			result:   &reclaimer.Result{StaleAfter: "10m0s", SkippedInFlight: 3},
			contains: []string{"Skipped in flight: 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printReclaimResult(&buf, tt.result)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
