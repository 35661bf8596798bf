package tsframe

import "time"

// Panel datasets often carry time as an integer week offset from a fixed
// origin rather than a timestamp. These helpers convert between the two on
// a fixed 7-day calendar.

const week = 7 * 24 * time.Hour

// WeekStart returns the start of week n counted from origin (week 0 starts
// at origin).
func WeekStart(origin time.Time, n int64) time.Time {
	return origin.Add(time.Duration(n) * week)
}

// WeekOf returns the week offset from origin containing t. Times before
// origin yield negative offsets.
func WeekOf(origin time.Time, t time.Time) int64 {
	d := t.Sub(origin)
	n := int64(d / week)
	if d < 0 && d%week != 0 {
		n--
	}
	return n
}

// WeekStartOf truncates t to the start of its containing week on the
// origin's calendar.
func WeekStartOf(origin time.Time, t time.Time) time.Time {
	return WeekStart(origin, WeekOf(origin, t))
}

// WeekBucket adapts WeekStartOf to a TimeBucket for ResampleTime.
func WeekBucket(origin time.Time) TimeBucket {
	return func(t time.Time) time.Time { return WeekStartOf(origin, t) }
}
