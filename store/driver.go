package store

import "context"

// Driver is the persistence interface for the reminder collection.
// Drivers implement whole-collection semantics: LoadReminders returns every
// stored reminder in insertion order (an empty collection on first run) and
// SaveReminders replaces the full set. Partial updates are not supported;
// the Store serializes every load-modify-save cycle instead.
type Driver interface {
	LoadReminders(ctx context.Context) ([]*Reminder, error)
	SaveReminders(ctx context.Context, reminders []*Reminder) error
	Close() error
}
