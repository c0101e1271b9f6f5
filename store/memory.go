package store

import (
	"context"
	"sync"
)

// MemoryDriver is an in-memory implementation of Driver, used in tests and
// as a throwaway backend when no persistence is wanted.
type MemoryDriver struct {
	reminders []*Reminder
	mu        sync.RWMutex
}

// NewMemoryDriver creates a new in-memory driver.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{}
}

func (d *MemoryDriver) LoadReminders(_ context.Context) ([]*Reminder, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Reminder, len(d.reminders))
	copy(out, d.reminders)
	return out, nil
}

func (d *MemoryDriver) SaveReminders(_ context.Context, reminders []*Reminder) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.reminders = make([]*Reminder, len(reminders))
	copy(d.reminders, reminders)
	return nil
}

func (d *MemoryDriver) Close() error {
	return nil
}
