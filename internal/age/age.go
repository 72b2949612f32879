// Package age computes and formats display ages for sessions and jobs.
package age

import (
	"fmt"
	"time"
)

// AgeData computes the age of a timestamp and whether timing data exists.
func AgeData(then time.Time, now time.Time) (time.Duration, bool) {
	if then.IsZero() {
		return 0, false
	}
	d := now.Sub(then)
	if d < 0 {
		d = 0
	}
	return d, true
}

// ElapsedData computes how long a job has been (or was) running.
// For a terminal job the window is startedAt..completedAt; for a live job it
// is startedAt..now. Falls back to createdAt when the job never started.
func ElapsedData(createdAt, startedAt, completedAt time.Time, now time.Time) (time.Duration, bool) {
	start := startedAt
	if start.IsZero() {
		start = createdAt
	}
	if start.IsZero() {
		return 0, false
	}

	end := completedAt
	if end.IsZero() {
		end = now
	}
	if end.Before(start) {
		return 0, true
	}
	return end.Sub(start), true
}

// FormatShort formats a duration using short units (s/m/h/d).
func FormatShort(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}

	duration = duration.Truncate(time.Second)
	seconds := int64(duration.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	return fmt.Sprintf("%dd", days)
}

// FormatAgo returns a compact age string like "2m ago", or "-" when no
// timing data exists.
func FormatAgo(then time.Time, now time.Time) string {
	d, ok := AgeData(then, now)
	if !ok {
		return "-"
	}
	return FormatShort(d) + " ago"
}
