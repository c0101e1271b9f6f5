package store

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ErrReminderNotFound is returned when a delete request matches no stored
// reminder.
var ErrReminderNotFound = errors.New("reminder not found")

// Store provides access to the reminder collection on top of a Driver.
//
// The underlying drivers only support whole-collection load and save, so a
// single mutex guards every load-modify-save cycle, store operations and
// scheduler sweeps alike.
type Store struct {
	driver Driver
	mu     sync.Mutex
}

// New creates a new instance of Store.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// Update loads the collection, applies fn and persists the result, holding
// the store lock for the whole cycle. fn returning an error aborts the cycle
// without saving. This is the read-modify-write primitive shared by the
// request handlers and the scheduler.
func (s *Store) Update(ctx context.Context, fn func(reminders []*Reminder) ([]*Reminder, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminders, err := s.driver.LoadReminders(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load reminders")
	}
	next, err := fn(reminders)
	if err != nil {
		return err
	}
	if err := s.driver.SaveReminders(ctx, next); err != nil {
		return errors.Wrap(err, "failed to save reminders")
	}
	return nil
}

// List returns all pending reminders in insertion order.
func (s *Store) List(ctx context.Context) ([]*Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminders, err := s.driver.LoadReminders(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load reminders")
	}
	return reminders, nil
}

// Add appends a reminder to the collection.
func (s *Store) Add(ctx context.Context, reminder *Reminder) error {
	return s.Update(ctx, func(reminders []*Reminder) ([]*Reminder, error) {
		return append(reminders, reminder), nil
	})
}

// DeleteFirstMatching removes the first reminder whose task text is a
// substring of message and returns it. Ties are resolved by insertion order;
// this is best-effort matching, not keyed deletion. Returns
// ErrReminderNotFound when nothing matches, leaving the collection unchanged.
func (s *Store) DeleteFirstMatching(ctx context.Context, message string) (*Reminder, error) {
	var deleted *Reminder
	err := s.Update(ctx, func(reminders []*Reminder) ([]*Reminder, error) {
		for i, r := range reminders {
			if strings.Contains(message, r.Task) {
				deleted = r
				return append(reminders[:i], reminders[i+1:]...), nil
			}
		}
		return nil, ErrReminderNotFound
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
