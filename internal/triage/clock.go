package triage

import "time"

// Clock supplies creation timestamps
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock, truncated to whole seconds
// since the stored date has second precision
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().Truncate(time.Second)
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}
