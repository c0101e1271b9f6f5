// Package sqlite implements reminder persistence on SQLite. It keeps the
// whole-collection load/save contract: a save replaces the table contents in
// one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/remindme/internal/profile"
	"github.com/hrygo/remindme/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS reminder (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL,
	task TEXT NOT NULL,
	fire_at TEXT NOT NULL
);
`

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	// busy_timeout covers the rare overlap between a sweep and a request;
	// WAL keeps reads from blocking the writer.
	db, err := sql.Open("sqlite", profile.DSN+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", profile.DSN)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "failed to migrate reminder table")
	}

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) LoadReminders(ctx context.Context) ([]*store.Reminder, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT uid, task, fire_at FROM reminder ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query reminders")
	}
	defer rows.Close()

	list := []*store.Reminder{}
	for rows.Next() {
		var reminder store.Reminder
		var fireAt string
		if err := rows.Scan(&reminder.UID, &reminder.Task, &fireAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan reminder")
		}
		reminder.FireAt, err = time.ParseInLocation(store.TimeLayout, fireAt, time.Local)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid reminder time %q", fireAt)
		}
		list = append(list, &reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate reminders")
	}
	return list, nil
}

func (d *DB) SaveReminders(ctx context.Context, reminders []*store.Reminder) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminder`); err != nil {
		return errors.Wrap(err, "failed to clear reminders")
	}
	for _, r := range reminders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reminder (uid, task, fire_at) VALUES (?, ?, ?)`,
			r.UID, r.Task, r.FireAt.Format(store.TimeLayout),
		); err != nil {
			return errors.Wrap(err, "failed to insert reminder")
		}
	}
	return errors.Wrap(tx.Commit(), "failed to commit reminders")
}

func (d *DB) Close() error {
	return d.db.Close()
}
