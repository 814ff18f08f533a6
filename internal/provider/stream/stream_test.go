package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	applogger "FinSight/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func tradeAt(ts time.Time, sym string, price, vol float64) wsTrade {
	return wsTrade{Symbol: sym, Price: price, Volume: vol, TimeMS: ts.UnixMilli()}
}

func TestFoldBuildsMinuteBars(t *testing.T) {
	s := New(Config{}, testLogger(t))
	base := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	s.fold(tradeAt(base, "AAPL", 100, 10))
	s.fold(tradeAt(base.Add(20*time.Second), "AAPL", 102, 5))
	s.fold(tradeAt(base.Add(40*time.Second), "AAPL", 99, 5))
	s.fold(tradeAt(base.Add(time.Minute), "AAPL", 101, 7))

	bars := s.SessionBars("AAPL")
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	first := bars[0]
	if first.Open != 100 || first.High != 102 || first.Low != 99 || first.Close != 99 {
		t.Errorf("first bar OHLC = %v/%v/%v/%v", first.Open, first.High, first.Low, first.Close)
	}
	if first.Volume != 20 {
		t.Errorf("first bar volume = %v, want 20", first.Volume)
	}
	if !bars[1].Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("second bar timestamp = %v", bars[1].Timestamp)
	}
}

func TestFoldDiscardsPreviousDayBars(t *testing.T) {
	s := New(Config{}, testLogger(t))
	day1 := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	s.fold(tradeAt(day1, "AAPL", 100, 10))
	s.fold(tradeAt(day1.Add(time.Minute), "AAPL", 101, 10))
	s.fold(tradeAt(day2, "AAPL", 105, 5))

	bars := s.SessionBars("AAPL")
	if len(bars) != 1 {
		t.Fatalf("bars from a prior day must be dropped, got %d", len(bars))
	}
	if !bars[0].Timestamp.Equal(day2) {
		t.Errorf("surviving bar timestamp = %v, want %v", bars[0].Timestamp, day2)
	}
	if bars[0].Open != 105 {
		t.Errorf("surviving bar open = %v, want 105", bars[0].Open)
	}
}

func TestFoldRolloverClearsAllSymbols(t *testing.T) {
	s := New(Config{}, testLogger(t))
	day1 := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	s.fold(tradeAt(day1, "AAPL", 100, 10))
	s.fold(tradeAt(day1, "MSFT", 400, 3))
	s.fold(tradeAt(day2, "AAPL", 105, 5))

	if got := len(s.SessionBars("MSFT")); got != 0 {
		t.Fatalf("rollover must clear every symbol, MSFT still has %d bars", got)
	}
}

func TestFoldIgnoresNonPositivePrice(t *testing.T) {
	s := New(Config{}, testLogger(t))
	base := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	s.fold(tradeAt(base, "AAPL", 0, 10))
	s.fold(tradeAt(base, "AAPL", -1, 10))

	if got := len(s.SessionBars("AAPL")); got != 0 {
		t.Fatalf("non-positive prices must be ignored, got %d bars", got)
	}
}

// Exercises the connection state guard under the race detector.
func TestConnectionStateConcurrency(t *testing.T) {
	s := New(Config{Symbols: []string{"AAPL"}}, testLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.IsConnected()
				_ = s.Close()
				_ = s.Subscribe(context.Background())
				s.dropConn(nil)
			}
		}()
	}
	wg.Wait()

	if s.IsConnected() {
		t.Fatal("closed stream reports connected")
	}
}

func TestResetSessionClearsBars(t *testing.T) {
	s := New(Config{}, testLogger(t))
	base := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	s.fold(tradeAt(base, "AAPL", 100, 10))
	s.ResetSession()

	if got := len(s.SessionBars("AAPL")); got != 0 {
		t.Fatalf("expected empty session after reset, got %d bars", got)
	}
}
