// Package insights schedules the weekly analytics generation run.
package insights

import (
	"context"
	"log/slog"
	"time"

	"github.com/amanjaiman/habit-server/server/analytics"
)

type Runner struct {
	orchestrator *analytics.Orchestrator
	weekday      time.Weekday
	hourUTC      int
	now          func() time.Time
}

// NewRunner creates a weekly analytics runner firing on the given
// weekday and hour (UTC).
func NewRunner(orchestrator *analytics.Orchestrator, weekday time.Weekday, hourUTC int) *Runner {
	return &Runner{
		orchestrator: orchestrator,
		weekday:      weekday,
		hourUTC:      hourUTC,
		now:          time.Now,
	}
}

// Run starts the background task. It sleeps until the next scheduled
// slot, runs the pipeline, then reschedules. A run that overlaps the
// next slot simply delays it; runs never execute concurrently.
func (r *Runner) Run(ctx context.Context) {
	for {
		next := r.nextRun(r.now().UTC())
		slog.Info("analytics run scheduled", "next", next)

		timer := time.NewTimer(next.Sub(r.now().UTC()))
		select {
		case <-timer.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			timer.Stop()
			slog.Info("insights runner stopped")
			return
		}
	}
}

// RunOnce executes the pipeline once (for manual trigger).
func (r *Runner) RunOnce(ctx context.Context) {
	if _, err := r.orchestrator.GenerateAll(ctx); err != nil {
		slog.Error("analytics run failed", "error", err)
	}
}

// nextRun returns the next occurrence of the configured weekday and
// hour strictly after now.
func (r *Runner) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), r.hourUTC, 0, 0, 0, time.UTC)
	daysAhead := (int(r.weekday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, daysAhead)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
