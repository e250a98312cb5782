package clock

import "time"

// Clock is the only source of "now" for services; tests swap in Fixed.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

// Now keeps the local zone; callers convert to the configured one.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }
