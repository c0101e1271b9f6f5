// Package timeparse extracts an absolute fire time and a residual task
// description from natural language reminder messages.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrUnparseable is returned when no supported time expression is found in
// the input. Callers surface this as user guidance, not as a server fault.
var ErrUnparseable = errors.New("no recognizable time expression")

// Patterns for message normalization and time extraction
var (
	// Clock times typed with a period instead of a colon ("11.29 pm").
	// Must be repaired before clock extraction or the token will not match.
	dottedClockPattern = regexp.MustCompile(`(\d{1,2})\.(\d{2})`)

	// Connective words that belong to neither the task nor the time.
	// "at" and "on" match as whole words only, so weekday and month names
	// ("monday", "noon") survive stripping.
	fillerPattern = regexp.MustCompile(`\b(?:remind me to|reminder for|at|on)\b`)

	clockPattern    = regexp.MustCompile(`(\d{1,2}):(\d{2})\s?(am|pm)?`)
	durationPattern = regexp.MustCompile(`in (\d+) (minutes|hours|days)`)
)

// defaultHour is the time of day assumed for date-only expressions such as
// "tomorrow" and "next monday".
const defaultHour = 8

// Result holds the resolved fire time and the residual task text.
type Result struct {
	FireAt time.Time
	Task   string
}

// Parser resolves natural language time expressions against a reference
// clock. It is stateless and safe for concurrent use.
type Parser struct {
	loc *time.Location
}

// NewParser creates a parser that resolves expressions in the given location.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{loc: loc}
}

// Parse extracts a fire time from text relative to now.
//
// Rules are evaluated in priority order: an exact relative duration
// ("in N minutes|hours|days") wins over everything else, then "tomorrow",
// then "next monday", then a bare clock time resolved to its nearest future
// occurrence. "tomorrow" and "next monday" deliberately discard any clock
// time also present in the message and default to 08:00.
func (p *Parser) Parse(text string, now time.Time) (*Result, error) {
	now = now.In(p.loc)

	cleaned := strings.ToLower(text)
	cleaned = dottedClockPattern.ReplaceAllString(cleaned, "$1:$2")
	cleaned = fillerPattern.ReplaceAllString(cleaned, "")

	// Pull out the clock token first; the residual text is the task.
	clockToken := clockPattern.FindString(cleaned)
	task := cleaned
	if clockToken != "" {
		task = strings.Replace(task, clockToken, "", 1)
	}

	if m := durationPattern.FindStringSubmatch(cleaned); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, errors.Wrapf(ErrUnparseable, "bad duration %q", m[1])
		}
		var unit time.Duration
		switch m[2] {
		case "minutes":
			unit = time.Minute
		case "hours":
			unit = time.Hour
		case "days":
			unit = 24 * time.Hour
		}
		task = strings.Replace(task, m[0], "", 1)
		return &Result{
			FireAt: now.Add(time.Duration(n) * unit),
			Task:   tidy(task),
		}, nil
	}

	if strings.Contains(cleaned, "tomorrow") {
		day := now.AddDate(0, 0, 1)
		return &Result{
			FireAt: time.Date(day.Year(), day.Month(), day.Day(), defaultHour, 0, 0, 0, p.loc),
			Task:   tidy(strings.Replace(task, "tomorrow", "", 1)),
		}, nil
	}

	if strings.Contains(cleaned, "next monday") {
		days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			// "next" always means a different day, even on a Monday
			days = 7
		}
		day := now.AddDate(0, 0, days)
		return &Result{
			FireAt: time.Date(day.Year(), day.Month(), day.Day(), defaultHour, 0, 0, 0, p.loc),
			Task:   tidy(strings.Replace(task, "next monday", "", 1)),
		}, nil
	}

	if clockToken != "" {
		fireAt, err := p.resolveClock(clockToken, now)
		if err != nil {
			return nil, err
		}
		return &Result{FireAt: fireAt, Task: tidy(task)}, nil
	}

	return nil, ErrUnparseable
}

// resolveClock turns an "h:mm[ am|pm]" token into its nearest future
// occurrence relative to now.
func (p *Parser) resolveClock(token string, now time.Time) (time.Time, error) {
	m := clockPattern.FindStringSubmatch(token)
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrUnparseable, "bad hour %q", m[1])
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrUnparseable, "bad minute %q", m[2])
	}

	switch m[3] {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, errors.Wrapf(ErrUnparseable, "invalid clock time %q", token)
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, p.loc)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, nil
}

// tidy collapses the whitespace gaps left behind by stripped phrases.
func tidy(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
