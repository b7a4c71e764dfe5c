// Charterdesk is a terminal client for yacht charter reservations.
//
// It searches a reservation backend for yachts available on a date, shows
// their details and books them, either through the interactive three-pane
// interface or through one-shot commands suitable for scripts.
//
// Usage:
//
//	charterdesk [command] [flags]
//
// Running without arguments launches the interactive interface.
// See 'charterdesk --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/charterdesk/charterdesk/internal/logging"
	"github.com/charterdesk/charterdesk/internal/version"
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
	Use:   "charterdesk",
	Short: "Yacht charter reservations from the terminal",
	Long: `Search for available yachts, inspect them and make reservations.

The backend is taken from --backend, the CHARTERDESK_BACKEND environment
variable or the config file, in that order. When none is set and
auto-discovery is enabled, the local network is browsed over mDNS.

If no command is specified, the interactive interface will launch.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the TUI when no subcommand provided
		return runTUI(cmd, args)
	},
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
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "charterdesk %s\n", version.Full())
	},
}
