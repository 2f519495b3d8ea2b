package core

import "time"

// Clock supplies the current instant. Overdue checks and "today" stamps read
// it instead of calling time.Now so that tests can pin the date.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// FixedClock always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Today returns the calendar day of the clock's current instant.
func Today(c Clock) Date {
	return DateOf(c.Now())
}
