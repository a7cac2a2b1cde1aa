package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/killallgit/podcast-analyzer/internal/services/reclaimer"
)

// reclaimCmd resets jobs left behind by a crashed or killed server
var reclaimCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Reset stuck analysis and digest jobs",
	Long: `Reset episodes and digests that have been processing longer than the
stale threshold.

Stale episodes return to pending so they can be analyzed again; stale
digests are marked failed. With --include-failed, episodes whose last
failure was transient are returned to pending as well.

The server must not be running.

Example:
  podcast-analyzer reclaim
  podcast-analyzer reclaim --stale-after 10m --include-failed`,
	RunE: runReclaim,
}

func init() {
	rootCmd.AddCommand(reclaimCmd)
	reclaimCmd.Flags().Bool("include-failed", false, "also requeue episodes that failed transiently")
	reclaimCmd.Flags().Duration("stale-after", 0, "processing age considered stuck (defaults to processing.stale_after)")
}

func runReclaim(cmd *cobra.Command, args []string) error {
	includeFailed, _ := cmd.Flags().GetBool("include-failed")
	staleAfter, _ := cmd.Flags().GetDuration("stale-after")
	if staleAfter < 0 {
		return fmt.Errorf("--stale-after must be positive, got %s", staleAfter)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	result, err := app.reclaimer.Run(ctx, reclaimer.Options{
		StaleAfter:    staleAfter,
		IncludeFailed: includeFailed,
	})
	if err != nil {
		return fmt.Errorf("reclaim failed: %w", err)
	}
	printReclaimResult(cmd.OutOrStdout(), result)
	return nil
}

func printReclaimResult(out io.Writer, result *reclaimer.Result) {
	fmt.Fprintf(out, "Reclaim (stale after %s)\n", result.StaleAfter)
	fmt.Fprintln(out, strings.Repeat("-", 40))
	fmt.Fprintf(out, "Episodes reset:   %d %v\n", len(result.EpisodesReset), result.EpisodesReset)
	fmt.Fprintf(out, "Digests failed:   %d %v\n", len(result.DigestsFailed), result.DigestsFailed)
	fmt.Fprintf(out, "Failed requeued:  %d %v\n", len(result.FailedRequeued), result.FailedRequeued)
	if result.SkippedInFlight > 0 {
		fmt.Fprintf(out, "Skipped in flight: %d\n", result.SkippedInFlight)
	}
}
