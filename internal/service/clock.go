package service

import "time"

// Clock returns the current server time.
type Clock func() time.Time

// SystemClock is UTC wall time truncated to the precision Postgres keeps,
// so a time handed to a client compares equal to the stored value.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
