package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/remindme/plugin/timeparse"
	"github.com/hrygo/remindme/store"
)

// User-facing chat responses.
const (
	parseHelpMessage = "I couldn't understand the date/time. Try using 'Remind me to call at 11:30 PM'."
	deletedMessage   = "Reminder deleted!"
	notFoundMessage  = "Reminder not found!"
)

// ReminderService implements the add/list/delete operations behind the HTTP
// handlers and turns their outcomes into user-facing chat responses.
type ReminderService struct {
	store  *store.Store
	parser *timeparse.Parser
	now    func() time.Time
}

// NewReminderService creates a reminder service over the given store.
func NewReminderService(s *store.Store) *ReminderService {
	return &ReminderService{
		store:  s,
		parser: timeparse.NewParser(time.Local),
		now:    time.Now,
	}
}

// AddReminder parses message and stores the resulting reminder. A message
// without a recognizable time expression yields the guidance response, not
// an error; persistence failures propagate.
func (s *ReminderService) AddReminder(ctx context.Context, message string) (string, error) {
	result, err := s.parser.Parse(message, s.now())
	if err != nil {
		if errors.Is(err, timeparse.ErrUnparseable) {
			return parseHelpMessage, nil
		}
		return "", err
	}

	reminder := &store.Reminder{
		UID:    shortuuid.New(),
		Task:   result.Task,
		FireAt: result.FireAt,
	}
	if err := s.store.Add(ctx, reminder); err != nil {
		return "", err
	}
	return fmt.Sprintf("Reminder added for %s!", reminder.FireAt.Format(store.TimeLayout)), nil
}

// ListReminders returns all pending reminders in insertion order.
func (s *ReminderService) ListReminders(ctx context.Context) ([]*store.Reminder, error) {
	return s.store.List(ctx)
}

// DeleteReminder removes the first reminder whose task text appears in
// message.
func (s *ReminderService) DeleteReminder(ctx context.Context, message string) (string, error) {
	_, err := s.store.DeleteFirstMatching(ctx, strings.TrimSpace(message))
	if err != nil {
		if errors.Is(err, store.ErrReminderNotFound) {
			return notFoundMessage, nil
		}
		return "", err
	}
	return deletedMessage, nil
}
