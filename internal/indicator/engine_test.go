package indicator

import (
	"errors"
	"math"
	"testing"
	"time"

	"FinSight/internal/domain/models"
)

func seriesFromCloses(ticker string, closes []float64) *models.MarketSeries {
	base := time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return &models.MarketSeries{Ticker: ticker, Bars: bars}
}

func TestComputeRejectsShortSeries(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	_, err := Compute(seriesFromCloses("AAPL", closes))
	if err == nil {
		t.Fatalf("expected error for 40 bars")
	}
	var insufficient *models.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %T", err)
	}
	if insufficient.Have != 40 || insufficient.Need != MinDailyBars {
		t.Fatalf("unexpected counts: have=%d need=%d", insufficient.Have, insufficient.Need)
	}
}

func TestComputeFullSet(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	set, err := Compute(seriesFromCloses("AAPL", closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.SMA20 == 0 || set.SMA50 == 0 || set.EMA12 == 0 || set.EMA26 == 0 {
		t.Fatalf("zero-filled averages: %+v", set)
	}
	if set.RSI14 <= 50 {
		t.Fatalf("monotonic rise should put RSI above 50, got %v", set.RSI14)
	}
	if set.LastClose != closes[len(closes)-1] {
		t.Fatalf("unexpected last close %v", set.LastClose)
	}
	if set.VWAPSet {
		t.Fatalf("VWAP must stay unset without session bars")
	}
}

func TestComputeDeterministic(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/5)
	}
	s := seriesFromCloses("MSFT", closes)
	a, err := Compute(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Compute(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *a != *b {
		t.Fatalf("same input produced different sets:\n%+v\n%+v", a, b)
	}
}

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	if got := SMA(values, 5); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
	if got := SMA(values, 2); got != 4.5 {
		t.Fatalf("expected 4.5, got %v", got)
	}
	if got := SMA(values, 6); got != 0 {
		t.Fatalf("short input should return 0, got %v", got)
	}
}

func TestEMAConstantSeries(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 42
	}
	if got := EMA(values, 12); math.Abs(got-42) > 1e-9 {
		t.Fatalf("EMA of constant series should be the constant, got %v", got)
	}
}

func TestRSIAllGains(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i)
	}
	if got := RSI(values, 14); got != 100 {
		t.Fatalf("all-gain series should give RSI 100, got %v", got)
	}
}

func TestRSIFlatSeries(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 50
	}
	if got := RSI(values, 14); got != 50 {
		t.Fatalf("flat series should give RSI 50, got %v", got)
	}
}

func TestRSIBounded(t *testing.T) {
	values := []float64{10, 12, 9, 14, 8, 15, 7, 16, 6, 17, 5, 18, 4, 19, 3, 20}
	got := RSI(values, 14)
	if got < 0 || got > 100 {
		t.Fatalf("RSI out of bounds: %v", got)
	}
}

func TestBollingerFlatSeries(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		values[i] = 100
	}
	upper, middle, lower := Bollinger(values, 20, 2.0)
	if upper != 100 || middle != 100 || lower != 100 {
		t.Fatalf("flat series should collapse the bands: %v %v %v", upper, middle, lower)
	}
}

func TestBollingerOrdering(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		values[i] = 100 + 5*math.Sin(float64(i))
	}
	upper, middle, lower := Bollinger(values, 20, 2.0)
	if !(lower < middle && middle < upper) {
		t.Fatalf("band ordering violated: %v %v %v", upper, middle, lower)
	}
}

func TestVWAP(t *testing.T) {
	session := []models.PriceBar{
		{High: 12, Low: 8, Close: 10, Volume: 100},
		{High: 22, Low: 18, Close: 20, Volume: 300},
	}
	got, ok := VWAP(session)
	if !ok {
		t.Fatalf("expected vwap")
	}
	want := (10.0*100 + 20.0*300) / 400
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestVWAPZeroVolume(t *testing.T) {
	session := []models.PriceBar{{High: 12, Low: 8, Close: 10, Volume: 0}}
	if _, ok := VWAP(session); ok {
		t.Fatalf("zero-volume session must not produce a vwap")
	}
}

func TestComputeWithSession(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	session := []models.PriceBar{{High: 101, Low: 99, Close: 100, Volume: 500}}
	set, err := ComputeWithSession(seriesFromCloses("AAPL", closes), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.VWAPSet || set.VWAP != 100 {
		t.Fatalf("expected session vwap 100, got %v (set=%v)", set.VWAP, set.VWAPSet)
	}
}
