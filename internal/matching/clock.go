// internal/matching/clock.go
// Calendar arithmetic for the daily match cycle. All date keys and reset
// boundaries use wall-clock time in the configured zone (Europe/Stockholm),
// so a "day" can be 23 or 25 absolute hours across DST transitions.

package matching

import (
	"fmt"
	"time"
)

// Clock resolves calendar dates and reset boundaries in the match timezone.
// The now function is injectable for tests.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock loads the named IANA timezone.
func NewClock(timezone string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewClockAt returns a clock frozen to the given instant, for tests.
func NewClockAt(timezone string, at time.Time) (*Clock, error) {
	c, err := NewClock(timezone)
	if err != nil {
		return nil, err
	}
	c.now = func() time.Time { return at }
	return c, nil
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	return c.now()
}

// Today returns the current calendar date key (YYYY-MM-DD) in the match
// timezone, not UTC.
func (c *Clock) Today() string {
	return c.DateOf(c.now())
}

// DateOf returns the calendar date key for an instant.
func (c *Clock) DateOf(t time.Time) string {
	return t.In(c.loc).Format("2006-01-02")
}

// NextReset returns the next local midnight as an absolute instant.
func (c *Clock) NextReset() time.Time {
	local := c.now().In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, c.loc)
}

// NextAt returns the next instant the wall clock in the match timezone
// reads hour:minute, regardless of the host's zone.
func (c *Clock) NextAt(hour, minute int) time.Time {
	local := c.now().In(c.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, c.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, c.loc)
	}
	return next
}

// TimeRemaining formats the wall-clock time left until the next reset.
func (c *Clock) TimeRemaining() string {
	return FormatRemaining(c.NextReset().Sub(c.now()))
}

// FormatRemaining renders a duration as "Xh Ym", flooring both parts.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int(d%time.Hour) / int(time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
