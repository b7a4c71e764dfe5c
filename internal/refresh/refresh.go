package refresh

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/charterdesk/charterdesk/internal/logging"
	"github.com/charterdesk/charterdesk/internal/panel"
)

// Refreshable re-runs the last search.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSchedule reports whether expr is an accepted schedule. The empty
// string is valid and means disabled.
func ValidateSchedule(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", expr, err)
	}
	return nil
}

// Refresher re-runs a search on a cron schedule.
type Refresher struct {
	target   Refreshable
	expr     string
	schedule cron.Schedule
	timeout  time.Duration

	// OnRefresh, when set, is called after every scheduled refresh.
	OnRefresh func(error)

	mu      sync.Mutex
	runs    int
	lastErr error
	lastRun time.Time
}

// New creates a refresher for target. expr accepts five-field cron
// expressions and descriptors such as "@every 5m" or "@hourly". An empty
// expr yields a disabled refresher whose Start returns immediately.
func New(target Refreshable, expr string) (*Refresher, error) {
	r := &Refresher{target: target, expr: strings.TrimSpace(expr), timeout: time.Minute}
	if r.expr == "" {
		return r, nil
	}
	sched, err := parser.Parse(r.expr)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", expr, err)
	}
	r.schedule = sched
	return r, nil
}

// Enabled reports whether a schedule is configured.
func (r *Refresher) Enabled() bool {
	return r.schedule != nil
}

// Schedule returns the configured expression.
func (r *Refresher) Schedule() string {
	return r.expr
}

// Next returns the next activation after t, or the zero time when disabled.
func (r *Refresher) Next(t time.Time) time.Time {
	if r.schedule == nil {
		return time.Time{}
	}
	return r.schedule.Next(t)
}

// Start runs the schedule until ctx is cancelled. Overlapping activations
// are skipped while a refresh is still running.
func (r *Refresher) Start(ctx context.Context) error {
	if r.schedule == nil {
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(r.schedule, cron.FuncJob(func() { r.RunOnce(ctx) }))
	c.Start()
	logging.Info("Scheduled refresh started", zap.String("schedule", r.expr))

	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// RunOnce performs a single refresh and records its outcome.
func (r *Refresher) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.target.Refresh(ctx)
	if errors.Is(err, panel.ErrFetchSuperseded) {
		err = nil
	}

	r.mu.Lock()
	r.runs++
	r.lastErr = err
	r.lastRun = time.Now()
	r.mu.Unlock()

	if err != nil {
		logging.Warn("Scheduled refresh failed", zap.Error(err))
	} else {
		logging.Debug("Scheduled refresh completed")
	}
	if r.OnRefresh != nil {
		r.OnRefresh(err)
	}
	return err
}

// Status returns the number of refreshes run, the last error and when the
// last refresh finished.
func (r *Refresher) Status() (runs int, lastErr error, lastRun time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs, r.lastErr, r.lastRun
}
