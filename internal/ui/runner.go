package ui

import (
	"context"
	"time"
)

// RunnerConfig holds configuration for a single command execution
type RunnerConfig struct {
	Title    string  // Command title (e.g., "Reservation")
	Command  string  // Full command (e.g., "charterdesk reserve")
	Params   []Param // Parameters to display in the header
	Wait     string  // Message shown while the operation runs
	WaitHint string  // e.g., "up to 10 seconds"
}

// Operation is the work done by a Runner. It returns details for the
// success box.
type Operation func(ctx context.Context) ([]Param, error)

// FailureHints maps an operation error to troubleshooting tips.
type FailureHints func(err error) []string

// Runner orchestrates the header, wait line and result box for one command.
type Runner struct {
	config  RunnerConfig
	printer *Printer
	hints   FailureHints
}

// NewRunner creates a runner writing through p.
func NewRunner(p *Printer, config RunnerConfig, hints FailureHints) *Runner {
	return &Runner{config: config, printer: p, hints: hints}
}

// Run executes op and prints its result. The operation error is returned.
func (r *Runner) Run(ctx context.Context, op Operation) error {
	r.printer.PrintHeader(r.config.Title, r.config.Command, r.config.Params...)
	if r.config.Wait != "" {
		r.printer.PrintPleaseWait(r.config.Wait, r.config.WaitHint)
		r.printer.Newline()
	}

	start := time.Now()
	details, err := op(ctx)
	duration := time.Since(start).Round(time.Millisecond).String()

	if err != nil {
		var tips []string
		if r.hints != nil {
			tips = r.hints(err)
		}
		r.printer.PrintError(r.config.Title+" failed", err, tips)
		return err
	}

	details = append(details, Param{Key: "Duration", Value: duration})
	r.printer.PrintSuccess(r.config.Title+" complete", details...)
	return nil
}
