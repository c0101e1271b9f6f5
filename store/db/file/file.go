// Package file implements reminder persistence as a single JSON document,
// the format the service has always used on disk.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/hrygo/remindme/internal/profile"
	"github.com/hrygo/remindme/store"
)

type DB struct {
	path string
}

func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	if profile.DSN == "" {
		return nil, errors.New("file driver requires a path in DSN")
	}
	return &DB{path: profile.DSN}, nil
}

func (d *DB) LoadReminders(_ context.Context) ([]*store.Reminder, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			// First run, nothing persisted yet.
			return []*store.Reminder{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", d.path)
	}

	reminders := []*store.Reminder{}
	if err := json.Unmarshal(data, &reminders); err != nil {
		return nil, errors.Wrapf(err, "malformed reminder file %s", d.path)
	}
	return reminders, nil
}

func (d *DB) SaveReminders(_ context.Context, reminders []*store.Reminder) error {
	if reminders == nil {
		reminders = []*store.Reminder{}
	}
	data, err := json.MarshalIndent(reminders, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode reminders")
	}

	// Write-then-rename so a crash mid-save never truncates the collection.
	tmp, err := os.CreateTemp(filepath.Dir(d.path), ".reminders-*.json")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write reminders")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to close temp file")
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to replace %s", d.path)
	}
	return nil
}

func (d *DB) Close() error {
	return nil
}
