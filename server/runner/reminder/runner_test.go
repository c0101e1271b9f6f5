package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/remindme/store"
)

type mockPublisher struct {
	published  []Notification
	shouldFail bool
	mu         sync.Mutex
}

func (p *mockPublisher) Publish(_ context.Context, notification Notification) error {
	if p.shouldFail {
		return errors.New("mock publisher failure")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, notification)
	return nil
}

func (p *mockPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func newTestRunner(t *testing.T) (*Runner, *store.Store, *mockPublisher) {
	t.Helper()
	s := store.New(store.NewMemoryDriver())
	publisher := &mockPublisher{}
	return NewRunner(s, publisher, DefaultConfig()), s, publisher
}

func TestRunOnce_FiresDueRemindersExactlyOnce(t *testing.T) {
	ctx := context.Background()
	runner, s, publisher := newTestRunner(t)
	now := time.Now()

	require.NoError(t, s.Add(ctx, &store.Reminder{UID: "a", Task: "call mom", FireAt: now.Add(-time.Minute)}))
	require.NoError(t, s.Add(ctx, &store.Reminder{UID: "b", Task: "buy milk", FireAt: now.Add(time.Hour)}))
	require.NoError(t, s.Add(ctx, &store.Reminder{UID: "c", Task: "stretch", FireAt: now}))

	fired, err := runner.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fired)

	// Due reminders published in encounter order with the task embedded.
	require.Equal(t, 2, publisher.count())
	assert.Equal(t, "🔔 Reminder: call mom", publisher.published[0].Message)
	assert.Equal(t, "🔔 Reminder: stretch", publisher.published[1].Message)

	// Fired reminders are gone from the persisted view.
	remaining, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "buy milk", remaining[0].Task)

	// A second sweep finds nothing to fire.
	fired, err = runner.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 2, publisher.count())
}

func TestRunOnce_PublishFailureStillRemoves(t *testing.T) {
	ctx := context.Background()
	runner, s, publisher := newTestRunner(t)
	publisher.shouldFail = true

	require.NoError(t, s.Add(ctx, &store.Reminder{UID: "a", Task: "call mom", FireAt: time.Now().Add(-time.Minute)}))

	fired, err := runner.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	remaining, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRunOnce_EmptyCollectionIsANoop(t *testing.T) {
	ctx := context.Background()
	runner, _, publisher := newTestRunner(t)

	fired, err := runner.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 0, publisher.count())
}

func TestRunOnce_FiresRelativeToClockNotPosition(t *testing.T) {
	ctx := context.Background()
	runner, s, publisher := newTestRunner(t)
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	runner.now = func() time.Time { return base }

	// The later reminder is inserted first; only the due one fires.
	require.NoError(t, s.Add(ctx, &store.Reminder{UID: "a", Task: "later", FireAt: base.Add(time.Hour)}))
	require.NoError(t, s.Add(ctx, &store.Reminder{UID: "b", Task: "now", FireAt: base}))

	fired, err := runner.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	require.Equal(t, 1, publisher.count())
	assert.Equal(t, "🔔 Reminder: now", publisher.published[0].Message)
}

func TestRun_StopsOnContextCancellation(t *testing.T) {
	s := store.New(store.NewMemoryDriver())
	publisher := &mockPublisher{}
	runner := NewRunner(s, publisher, Config{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	require.NoError(t, s.Add(context.Background(), &store.Reminder{UID: "a", Task: "call mom", FireAt: time.Now().Add(-time.Second)}))

	assert.Eventually(t, func() bool { return publisher.count() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
}

func TestNewRunner_DefaultsInterval(t *testing.T) {
	runner := NewRunner(store.New(store.NewMemoryDriver()), &mockPublisher{}, Config{})
	assert.Equal(t, time.Second, runner.interval)
}
