package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/killallgit/podcast-analyzer/cmd.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the build version, git commit and build time of the Podcast
Analyzer binary, plus the Go runtime it was built with.`,
	Run: func(cmd *cobra.Command, args []string) {
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Fprintf(cmd.OutOrStdout(), "v%s\n", Version)
			return
		}
		printVersion(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("short", "s", false, "print just the version number")
}

func printVersion(out io.Writer) {
	rule := strings.Repeat("-", 40)
	fmt.Fprintf(out, "Podcast Analyzer\n%s\n", rule)
	fmt.Fprintf(out, "Version:      v%s\n", Version)
	fmt.Fprintf(out, "Git Commit:   %s\n", GitCommit)
	fmt.Fprintf(out, "Build Time:   %s\n", buildAge(BuildTime))
	fmt.Fprintf(out, "Go Version:   %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintln(out, rule)
}

// buildAge appends a relative age when the build time is RFC3339
func buildAge(built string) string {
	at, err := time.Parse(time.RFC3339, built)
	if err != nil {
		return built
	}
	return fmt.Sprintf("%s (%s)", built, humanize.Time(at))
}
