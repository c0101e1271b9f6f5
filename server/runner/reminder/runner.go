// Package reminder runs the background sweep that fires due reminders.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrygo/remindme/store"
)

// Notification is the single event type published when a reminder fires.
type Notification struct {
	Message string `json:"message"`
}

// Publisher delivers fired-reminder notifications to connected listeners.
// Delivery is best effort; a failed publish never blocks the sweep.
type Publisher interface {
	Publish(ctx context.Context, notification Notification) error
}

// Config holds configuration for the runner.
type Config struct {
	// Interval is how often the sweep checks for due reminders.
	Interval time.Duration
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() Config {
	return Config{Interval: time.Second}
}

// Runner owns the periodic sweep over the reminder collection. It is
// constructed once at process start and stops when its context is cancelled.
type Runner struct {
	store     *store.Store
	publisher Publisher
	interval  time.Duration
	now       func() time.Time
}

// NewRunner creates a reminder sweep runner.
func NewRunner(s *store.Store, publisher Publisher, config Config) *Runner {
	if config.Interval <= 0 {
		config.Interval = time.Second
	}
	return &Runner{
		store:     s,
		publisher: publisher,
		interval:  config.Interval,
		now:       time.Now,
	}
}

// Run executes the sweep loop until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	slog.Info("reminder runner started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reminder runner stopped")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				slog.Error("reminder sweep failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single sweep: publish every due reminder in encounter
// order and drop it from the collection, all inside one serialized
// read-modify-write cycle. Returns the number of reminders fired.
//
// A publish failure is logged and never prevents removal. A persistence
// failure aborts the removals, leaving the due reminders pending for the
// next sweep; that retry is the one path where a notification can go out
// more than once.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	fired := 0
	err := r.store.Update(ctx, func(reminders []*store.Reminder) ([]*store.Reminder, error) {
		now := r.now()
		remaining := make([]*store.Reminder, 0, len(reminders))
		for _, rem := range reminders {
			if !rem.Due(now) {
				remaining = append(remaining, rem)
				continue
			}
			slog.Info("triggering reminder",
				"task", rem.Task,
				"fire_at", rem.FireAt.Format(store.TimeLayout),
			)
			notification := Notification{Message: fmt.Sprintf("🔔 Reminder: %s", rem.Task)}
			if err := r.publisher.Publish(ctx, notification); err != nil {
				slog.Warn("failed to deliver reminder notification", "task", rem.Task, "error", err)
			}
			fired++
		}
		return remaining, nil
	})
	if err != nil {
		return 0, err
	}
	return fired, nil
}
