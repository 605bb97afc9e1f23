// ABOUTME: Duration formatting utilities for reading times and fetch timings
// ABOUTME: Converts minute and second counts into short human-readable strings

package duration

import (
	"fmt"
	"time"
)

// FormatMinutes renders a minute count as "59 min" below an hour and "1h 0min" from an hour on.
// Negative values are treated as zero.
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}

// Elapsed renders the time since start rounded to milliseconds, for log fields.
func Elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
