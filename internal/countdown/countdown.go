// Package countdown turns a target instant into the remaining days, hours,
// minutes and seconds, and drives the once-per-second refresh of displayed
// countdowns.
package countdown

import "time"

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// TimeLeft is the decomposed remainder until a target instant
type TimeLeft struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	IsPast  bool  `json:"is_past"`
}

// Calculate decomposes target - now. A target at or before now is past.
func Calculate(target, now time.Time) TimeLeft {
	delta := target.Sub(now).Milliseconds()
	if delta <= 0 {
		return TimeLeft{IsPast: true}
	}

	return TimeLeft{
		Days:    delta / msPerDay,
		Hours:   delta / msPerHour % 24,
		Minutes: delta / msPerMinute % 60,
		Seconds: delta / msPerSecond % 60,
	}
}

