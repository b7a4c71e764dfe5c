// Package ui provides terminal output components for the charterdesk CLI.
//
// These components use Lipgloss to render polished output for the
// non-interactive commands (search, types, reserve, discover). Unlike the
// interactive TUI in package tui, they follow a "run once and exit" pattern.
//
// # Components
//
//   - Header: Command banner showing the operation name and parameters
//   - Result: Success, failure and warning boxes with ordered details
//   - Yacht table: Search results, available yachts first, unavailable rows muted
//   - Confirm: Summary box with a yes/no prompt
//   - Runner: header, wait line and result flow around a single operation
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	runner := ui.NewRunner(p, ui.RunnerConfig{
//	    Title:   "Reservation",
//	    Command: "charterdesk reserve",
//	    Params:  []ui.Param{{Key: "Yacht", Value: "Sea Breeze"}},
//	}, backend.TroubleshootingHints)
//
//	err := runner.Run(ctx, func(ctx context.Context) ([]ui.Param, error) {
//	    code, err := client.CreateReservation(ctx, reservation)
//	    return []ui.Param{{Key: "Confirmation", Value: code}}, err
//	})
//
// # Logging Integration
//
// CLI commands keep zap logging silent unless --log-level or
// CHARTERDESK_LOG_LEVEL is set, so the curated output stays clean.
package ui
