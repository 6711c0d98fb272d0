package driver

import "time"

// Clock supplies wall time to the driver. Tests inject a fake.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
