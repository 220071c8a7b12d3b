// Package calendar derives the "today" key and recipient ages from one shared clock.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical reminder date format. It sorts lexicographically
// in calendar order.
const DateLayout = "2006-01-02"

// Clock reports the current time in a fixed location.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock returns a Clock reading the wall clock in loc (time.Local when nil).
func NewClock(loc *time.Location) Clock {
	return NewClockFunc(time.Now, loc)
}

// NewClockFunc returns a Clock driven by now. Tests use it to pin "today".
func NewClockFunc(now func() time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{now: now, loc: loc}
}

// LoadLocation resolves an IANA zone name; empty means time.Local.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("calendar: load location %q: %w", name, err)
	}
	return loc, nil
}

// Now returns the current time in the clock's location.
func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now().In(c.location())
	}
	return c.now().In(c.location())
}

// Location returns the clock's location.
func (c Clock) Location() *time.Location {
	return c.location()
}

func (c Clock) location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// TodayKey returns today's date as YYYY-MM-DD.
func (c Clock) TodayKey() string {
	return Key(c.Now())
}

// Key formats t's calendar date as YYYY-MM-DD.
func Key(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a date-only or RFC 3339 string and returns the calendar
// date at midnight in loc.
func (c Clock) ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("calendar: empty date")
	}
	loc := c.location()
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar: parse date %q: %w", s, err)
	}
	return BeginningOfDay(t.In(loc)), nil
}

// AgeInDays returns the whole days between dob and today. ok is false when dob
// is empty or unparsable. A future dob yields a negative count.
func (c Clock) AgeInDays(dob string) (days int, ok bool) {
	if strings.TrimSpace(dob) == "" {
		return 0, false
	}
	birth, err := c.ParseDate(dob)
	if err != nil {
		return 0, false
	}
	return DaysBetween(birth, c.Now()), true
}

// BeginningOfDay strips the time of day from t.
func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from start to end. Both dates are projected
// onto UTC midnights so DST transitions never shorten a day.
func DaysBetween(start, end time.Time) int {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}
