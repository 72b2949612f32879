package stream

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// rateLimitRx matches usage-limit error results. Transcripts vary in the
// bytes between "limit" and "resets", so anything is accepted there. The
// captured group is the reset hour label: "6am", "8pm", or a bare 24-hour
// integer.
var rateLimitRx = regexp.MustCompile(`(?i)hit your limit.*resets\s+(\d{1,2}(?:am|pm)?)\s*\(UTC\)`)

// matchRateLimit returns the reset-hour label from a usage-limit result.
func matchRateLimit(result string) (string, bool) {
	m := rateLimitRx.FindStringSubmatch(result)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// resetHour converts an hour label to a 24-hour clock hour.
//
//	"12am" -> 0, "12pm" -> 12, "Npm" -> N+12, "Nam" -> N, bare N -> N
func resetHour(label string) (int, bool) {
	label = strings.ToLower(strings.TrimSpace(label))

	meridiem := ""
	digits := label
	if strings.HasSuffix(label, "am") || strings.HasSuffix(label, "pm") {
		meridiem = label[len(label)-2:]
		digits = label[:len(label)-2]
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || n > 23 {
		return 0, false
	}

	switch meridiem {
	case "am":
		if n == 12 {
			return 0, true
		}
		return n, true
	case "pm":
		if n == 12 {
			return 12, true
		}
		return n + 12, true
	default:
		return n, true
	}
}

// waitMinutes computes the minutes from now (UTC) to the next occurrence of
// the labeled hour, wrapping to the next day when the hour already passed.
// The result is always in [0, 1440).
func waitMinutes(label string, now time.Time) int {
	hour, ok := resetHour(label)
	if !ok {
		return 0
	}
	hour %= 24

	now = now.UTC()
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if target.Before(now) {
		target = target.Add(24 * time.Hour)
	}
	return int(target.Sub(now).Minutes())
}

// rateLimitMessage renders the failure message stored on a rate-limited job.
func rateLimitMessage(wait int, label string) string {
	return fmt.Sprintf("rate limit hit; wait %d minutes (resets at %s UTC)", wait, label)
}
