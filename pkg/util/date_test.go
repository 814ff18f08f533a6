package util

import (
	"testing"
	"time"
)

func TestLookbackRange(t *testing.T) {
	now := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	from, to := LookbackRange(now, 120)
	if !to.Equal(now) {
		t.Fatalf("unexpected to %v", to)
	}
	if !from.Equal(now.AddDate(0, 0, -120)) {
		t.Fatalf("unexpected from %v", from)
	}
}

func TestLookbackRangeNegative(t *testing.T) {
	now := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	from, _ := LookbackRange(now, -5)
	if !from.Equal(now) {
		t.Fatalf("expected clamped from, got %v", from)
	}
}

func TestIsThirdFriday(t *testing.T) {
	// 2024-10-18 is the third Friday of October 2024.
	if !IsThirdFriday(time.Date(2024, 10, 18, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected third friday")
	}
	if IsThirdFriday(time.Date(2024, 10, 11, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("second friday misclassified")
	}
	if IsThirdFriday(time.Date(2024, 10, 17, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("thursday misclassified")
	}
}

func TestInClockWindow(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2024, 10, 10, h, m, 0, 0, time.UTC)
	}
	if !InClockWindow(at(13, 30), 13, 30, 14, 30) {
		t.Fatalf("window start should be inclusive")
	}
	if InClockWindow(at(14, 30), 13, 30, 14, 30) {
		t.Fatalf("window end should be exclusive")
	}
	if InClockWindow(at(9, 29), 9, 30, 10, 0) {
		t.Fatalf("before window")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := ParseRetryAfter("30"); got != 30*time.Second {
		t.Fatalf("unexpected %v", got)
	}
	if got := ParseRetryAfter(""); got != 0 {
		t.Fatalf("expected 0 for empty, got %v", got)
	}
	if got := ParseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"); got != 0 {
		t.Fatalf("expected 0 for http-date, got %v", got)
	}
}
