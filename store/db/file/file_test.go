package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/remindme/internal/profile"
	"github.com/hrygo/remindme/store"
)

func newTestDB(t *testing.T) store.Driver {
	t.Helper()
	d, err := NewDB(&profile.Profile{DSN: filepath.Join(t.TempDir(), "reminders.json")})
	require.NoError(t, err)
	return d
}

func TestLoadReminders_FirstRunIsEmpty(t *testing.T) {
	d := newTestDB(t)

	reminders, err := d.LoadReminders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	in := []*store.Reminder{
		{UID: "a", Task: "call mom", FireAt: time.Date(2026, 3, 2, 23, 29, 0, 0, time.Local)},
		{UID: "b", Task: "buy milk", FireAt: time.Date(2026, 3, 3, 8, 0, 0, 0, time.Local)},
	}
	require.NoError(t, d.SaveReminders(ctx, in))

	out, err := d.LoadReminders(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "call mom", out[0].Task)
	assert.True(t, out[0].FireAt.Equal(in[0].FireAt))
	assert.Equal(t, "buy milk", out[1].Task)

	// save(load()) is a no-op on the persisted collection.
	require.NoError(t, d.SaveReminders(ctx, out))
	again, err := d.LoadReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestLoadReminders_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	d, err := NewDB(&profile.Profile{DSN: path})
	require.NoError(t, err)

	_, err = d.LoadReminders(context.Background())
	assert.Error(t, err)
}

func TestSaveReminders_NilSavesEmptyCollection(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	require.NoError(t, d.SaveReminders(ctx, nil))
	reminders, err := d.LoadReminders(ctx)
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestNewDB_RequiresDSN(t *testing.T) {
	_, err := NewDB(&profile.Profile{})
	assert.Error(t, err)

	_, err = NewDB(nil)
	assert.Error(t, err)
}
