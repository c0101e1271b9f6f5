package store

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// TimeLayout is the wire and persistence format for reminder fire times:
// local time at second precision.
const TimeLayout = "2006-01-02 15:04:05"

// Reminder is the sole persisted entity: a task description and the moment
// at or after which it must fire. The UID identifies a record across loads;
// deletion still matches by task substring (first match wins), so the UID is
// informational rather than an addressing key.
type Reminder struct {
	UID    string
	Task   string
	FireAt time.Time
}

type reminderJSON struct {
	UID  string `json:"uid,omitempty"`
	Task string `json:"task"`
	Time string `json:"time"`
}

// MarshalJSON renders the reminder in the persisted shape.
func (r *Reminder) MarshalJSON() ([]byte, error) {
	return json.Marshal(reminderJSON{
		UID:  r.UID,
		Task: r.Task,
		Time: r.FireAt.Format(TimeLayout),
	})
}

// UnmarshalJSON parses the persisted shape. A malformed time field is a
// deserialization error, not a silently dropped record.
func (r *Reminder) UnmarshalJSON(data []byte) error {
	var raw reminderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fireAt, err := time.ParseInLocation(TimeLayout, raw.Time, time.Local)
	if err != nil {
		return errors.Wrapf(err, "invalid reminder time %q", raw.Time)
	}
	r.UID = raw.UID
	r.Task = raw.Task
	r.FireAt = fireAt
	return nil
}

// Due reports whether the reminder should fire at the given time.
func (r *Reminder) Due(now time.Time) bool {
	return !r.FireAt.After(now)
}
