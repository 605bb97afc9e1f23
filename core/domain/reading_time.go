// ABOUTME: Reading-time value carried by articles, feeds and documents
// ABOUTME: Whole minutes with a distinct state for content shorter than a minute

package domain

import "daily-feed/pkg/utils/duration"

// ReadingTime is an estimated reading time in whole minutes.
type ReadingTime int

// BelowOneMinute marks content with no countable words. It is not the same as zero minutes.
const BelowOneMinute ReadingTime = -1

// IsBelowOneMinute reports whether r is the below-one-minute state.
func (r ReadingTime) IsBelowOneMinute() bool {
	return r == BelowOneMinute
}

// Minutes returns the numeric minutes, counting below-one-minute as zero.
func (r ReadingTime) Minutes() int {
	if r < 0 {
		return 0
	}
	return int(r)
}

// String formats the value for readers, e.g. "59 min" or "2h 5min".
func (r ReadingTime) String() string {
	if r.IsBelowOneMinute() {
		return "< 1 min"
	}
	return duration.FormatMinutes(int(r))
}

// Ptr returns a pointer to a copy of r.
func (r ReadingTime) Ptr() *ReadingTime {
	return &r
}

// SumReadingTimes totals the set values. Unset values are skipped.
// The result is nil only when every value is unset; a zero total of
// set values collapses to BelowOneMinute.
func SumReadingTimes(values ...*ReadingTime) *ReadingTime {
	var total int
	var seen bool
	for _, v := range values {
		if v == nil {
			continue
		}
		seen = true
		total += v.Minutes()
	}
	if !seen {
		return nil
	}
	if total == 0 {
		return BelowOneMinute.Ptr()
	}
	return ReadingTime(total).Ptr()
}
