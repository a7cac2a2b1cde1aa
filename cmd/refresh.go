package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/killallgit/podcast-analyzer/internal/services/scheduler"
)

// refreshCmd runs one feed refresh in the foreground
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh every podcast feed once",
	Long: `Fetch every subscribed feed once and store new episodes.

New episodes of podcasts with auto_analyze enabled are analyzed before the
command exits, unless --no-wait is given, in which case queued analysis is
abandoned and left for the reclaimer.

Example:
  podcast-analyzer refresh
  podcast-analyzer refresh --no-wait`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
	refreshCmd.Flags().Bool("no-wait", false, "exit without waiting for queued analysis")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	noWait, _ := cmd.Flags().GetBool("no-wait")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.pool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	defer app.pool.Stop()

	result, err := app.refresher.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	printRefreshResult(cmd.OutOrStdout(), result)

	if noWait || result.AutoQueued == 0 {
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Waiting for %d analysis job(s)...\n", result.AutoQueued)
	return app.waitIdle(ctx, time.Second)
}

func printRefreshResult(out io.Writer, result *scheduler.RefreshResult) {
	fmt.Fprintln(out, "Feed Refresh")
	fmt.Fprintln(out, strings.Repeat("-", 40))
	for _, r := range result.Results {
		if r.Error != "" {
			fmt.Fprintf(out, "  [%d] %s: error: %s\n", r.PodcastID, r.Title, r.Error)
			continue
		}
		fmt.Fprintf(out, "  [%d] %s: %d new, %d queued\n", r.PodcastID, r.Title, r.NewEpisodes, r.AutoQueued)
	}
	fmt.Fprintln(out, strings.Repeat("-", 40))
	fmt.Fprintf(out, "Podcasts: %d (%d failed)\n", result.Podcasts, result.Failed)
	fmt.Fprintf(out, "New episodes: %d, queued for analysis: %d\n", result.NewEpisodes, result.AutoQueued)
}
