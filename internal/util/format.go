package util

import (
	"fmt"
	"time"
)

// FormatDuration formats a duration as m:ss, or h:mm:ss from one hour on.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Seconds converts a float second count, as carried by frame timings, to a
// Duration. NaN and negative values become zero.
func Seconds(s float64) time.Duration {
	if s != s || s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
