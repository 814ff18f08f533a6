package util

import (
	"strconv"
	"time"
)

// LookbackRange returns the [from, to] window covering the last n calendar
// days ending at now.
func LookbackRange(now time.Time, days int) (time.Time, time.Time) {
	if days < 0 {
		days = 0
	}
	return now.AddDate(0, 0, -days), now
}

// IsThirdFriday reports the standard monthly derivatives expiry day.
func IsThirdFriday(t time.Time) bool {
	return t.Weekday() == time.Friday && t.Day() >= 15 && t.Day() <= 21
}

// InClockWindow reports whether t falls inside [fromH:fromM, toH:toM) on its
// own wall clock.
func InClockWindow(t time.Time, fromH, fromM, toH, toM int) bool {
	mins := t.Hour()*60 + t.Minute()
	return mins >= fromH*60+fromM && mins < toH*60+toM
}

// ParseRetryAfter reads a Retry-After header value given in whole seconds.
// Returns 0 for empty, malformed, or HTTP-date forms.
func ParseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
