package clock

import "time"

// Clock abstracts time for run timestamps and duration measurement.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
