// Argus crawls a public camera directory region by region.
//
// It fetches the directory's region catalog, walks every listing page of
// the chosen region in parallel, saves the discovered camera endpoints and
// can optionally check which of them answer.
//
// Usage:
//
//	argus [command] [flags]
//
// Running without a command starts a scan. See 'argus --help' for
// available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/argus/internal/logging"
	"github.com/muurk/argus/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "argus",
	Short: "Camera directory crawler",
	Long: `Argus crawls a public camera directory.

It lists the regions the directory knows about, collects every camera
endpoint listed for a region and can check which of those endpoints
answer.

If no command is specified, a scan is started.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	RunE:              runScan,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("argus %s\n", version.Detailed())
	},
}

func setupLogging(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}
