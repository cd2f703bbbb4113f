package attendance

import "time"

// Clock computes the calendar day and minute-of-day in one fixed zone,
// independent of the server's locale.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a clock for loc using the wall clock.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{loc: loc, now: time.Now}
}

// WithNow returns a copy of c reading time from now.
func (c Clock) WithNow(now func() time.Time) Clock {
	c.now = now
	return c
}

// Now returns the current instant in the clock's zone.
func (c Clock) Now() time.Time { return c.now().In(c.loc) }

// Location returns the clock's zone.
func (c Clock) Location() *time.Location { return c.loc }

// Day formats t's calendar day in the clock's zone.
func (c Clock) Day(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// MinutesSinceMidnight returns 0..1439 for t in the clock's zone.
func (c Clock) MinutesSinceMidnight(t time.Time) int {
	lt := t.In(c.loc)
	return lt.Hour()*60 + lt.Minute()
}
