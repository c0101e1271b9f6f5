package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return New(NewMemoryDriver())
}

func testReminder(uid, task string, fireAt time.Time) *Reminder {
	return &Reminder{UID: uid, Task: task, FireAt: fireAt}
}

func TestStore_AddPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	now := time.Now()

	require.NoError(t, s.Add(ctx, testReminder("a", "call mom", now.Add(time.Hour))))
	require.NoError(t, s.Add(ctx, testReminder("b", "buy milk", now.Add(time.Minute))))
	require.NoError(t, s.Add(ctx, testReminder("c", "stretch", now.Add(2*time.Hour))))

	reminders, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 3)
	assert.Equal(t, "call mom", reminders[0].Task)
	assert.Equal(t, "buy milk", reminders[1].Task)
	assert.Equal(t, "stretch", reminders[2].Task)
}

func TestStore_DeleteFirstMatching(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	now := time.Now()

	require.NoError(t, s.Add(ctx, testReminder("a", "call mom", now)))
	require.NoError(t, s.Add(ctx, testReminder("b", "call", now)))
	require.NoError(t, s.Add(ctx, testReminder("c", "buy milk", now)))

	// "call mom" comes first in insertion order and is a substring of the
	// message, so it wins even though "call" also matches.
	deleted, err := s.DeleteFirstMatching(ctx, "please delete call mom")
	require.NoError(t, err)
	assert.Equal(t, "a", deleted.UID)

	reminders, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.Equal(t, "call", reminders[0].Task)
	assert.Equal(t, "buy milk", reminders[1].Task)
}

func TestStore_DeleteFirstMatchingNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.Add(ctx, testReminder("a", "call mom", time.Now())))

	_, err := s.DeleteFirstMatching(ctx, "water the plants")
	assert.ErrorIs(t, err, ErrReminderNotFound)

	// A failed delete leaves the collection unchanged.
	reminders, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, reminders, 1)
}

func TestStore_UpdateAbortsWithoutSaving(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.Add(ctx, testReminder("a", "call mom", time.Now())))

	boom := errors.New("boom")
	err := s.Update(ctx, func(reminders []*Reminder) ([]*Reminder, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	reminders, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, reminders, 1)
}

func TestStore_ConcurrentAddsAreNotLost(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	now := time.Now()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			_ = s.Add(ctx, testReminder("", "task", now.Add(time.Duration(i)*time.Minute)))
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	reminders, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, reminders, 10)
}

func TestReminder_JSONRoundTrip(t *testing.T) {
	fireAt := time.Date(2026, 3, 2, 23, 29, 0, 0, time.Local)
	r := testReminder("abc123", "call mom", fireAt)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uid":"abc123","task":"call mom","time":"2026-03-02 23:29:00"}`, string(data))

	var decoded Reminder
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.UID, decoded.UID)
	assert.Equal(t, r.Task, decoded.Task)
	assert.True(t, decoded.FireAt.Equal(fireAt))
}

func TestReminder_UnmarshalRejectsMalformedTime(t *testing.T) {
	var r Reminder
	err := json.Unmarshal([]byte(`{"task":"call","time":"not a time"}`), &r)
	assert.Error(t, err)
}

func TestReminder_Due(t *testing.T) {
	now := time.Now()

	assert.True(t, testReminder("", "", now.Add(-time.Second)).Due(now))
	assert.True(t, testReminder("", "", now).Due(now))
	assert.False(t, testReminder("", "", now.Add(time.Second)).Due(now))
}
