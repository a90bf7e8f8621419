package booking

import "time"

// Clock supplies the current time for date validation and payment dates.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// DateOf drops the time of day from t, keeping its calendar date in t's
// own location, and returns that date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is DateOf(c.Now()).
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}
