package clock

import "time"

// Clock abstracts time to keep session timestamps deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads wall-clock time at the millisecond precision sessions are stored with.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return Millis(time.Now())
}

// Millis truncates t to whole milliseconds in UTC.
func Millis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}
