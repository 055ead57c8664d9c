package timeutil

import "time"

// Now returns the current time in UTC truncated to microseconds, the finest
// precision every supported database keeps.
func Now() time.Time {
	return Normalize(time.Now())
}

// Normalize converts t to the precision and location used for stored timestamps.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
