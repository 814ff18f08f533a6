package usecase

import (
	"math"

	"FinSight/internal/domain/models"
	"FinSight/internal/indicator"
)

const (
	volumeAveragePeriod = 20
	pivotLookback       = 60
	pivotSpan           = 2
	maxRedCandleScan    = 5
)

// buildIntradayMetrics assembles the snapshot the pattern detector and regime
// classifier read. Session bars take precedence; daily bars approximate the
// intraday view when no stream is attached.
func buildIntradayMetrics(series, index *models.MarketSeries, session []models.PriceBar, set *models.IndicatorSet) models.IntradayMetrics {
	m := models.IntradayMetrics{
		RSI14: set.RSI14,
	}
	if set.VWAPSet {
		m.VWAP = set.VWAP
	}

	last, ok := series.Last()
	if !ok {
		return m
	}
	m.Price = last.Close
	m.IntradayChangePct = pctChange(last.Open, last.Close)
	if len(session) > 0 {
		open := session[0].Open
		close := session[len(session)-1].Close
		m.Price = close
		m.IntradayChangePct = pctChange(open, close)
	}

	if n := series.Len(); n >= 2 {
		m.TickerChangePct = pctChange(series.Bars[n-2].Close, last.Close)
	}
	if index != nil {
		if n := index.Len(); n >= 2 {
			m.IndexChangePct = pctChange(index.Bars[n-2].Close, index.Bars[n-1].Close)
		}
	}

	volumes := series.Volumes()
	if avg := indicator.SMA(volumes, volumeAveragePeriod); avg > 0 {
		m.VolumeRatio = last.Volume / avg
	}

	m.RedCandleCount, m.RedCandlesHighVol = trailingRedCandles(series, volumes)
	m.BelowShortTermMA = set.SMA20 > 0 && m.Price < set.SMA20
	m.NearestLevel = nearestPivotLevel(series, m.Price)

	return m
}

// trailingRedCandles counts consecutive red daily candles from the most
// recent bar back, and whether they carried above-average volume.
func trailingRedCandles(series *models.MarketSeries, volumes []float64) (int, bool) {
	avg := indicator.SMA(volumes, volumeAveragePeriod)
	count := 0
	highVol := true
	for i := series.Len() - 1; i >= 0 && count < maxRedCandleScan; i-- {
		b := series.Bars[i]
		if !b.IsRed() {
			break
		}
		count++
		if avg > 0 && b.Volume <= avg {
			highVol = false
		}
	}
	if count == 0 {
		return 0, false
	}
	return count, highVol
}

// nearestPivotLevel scans recent local highs and lows and returns the level
// closest to the current price, or 0 when none qualify.
func nearestPivotLevel(series *models.MarketSeries, price float64) float64 {
	n := series.Len()
	if n < pivotSpan*2+1 || price <= 0 {
		return 0
	}
	from := n - pivotLookback
	if from < pivotSpan {
		from = pivotSpan
	}

	best := 0.0
	bestDist := math.MaxFloat64
	consider := func(level float64) {
		d := math.Abs(level - price)
		if d < bestDist {
			bestDist = d
			best = level
		}
	}

	for i := from; i < n-pivotSpan; i++ {
		high, low := true, true
		for j := i - pivotSpan; j <= i+pivotSpan; j++ {
			if j == i {
				continue
			}
			if series.Bars[j].High >= series.Bars[i].High {
				high = false
			}
			if series.Bars[j].Low <= series.Bars[i].Low {
				low = false
			}
		}
		if high {
			consider(series.Bars[i].High)
		}
		if low {
			consider(series.Bars[i].Low)
		}
	}
	return best
}

// openGapPct is today's open versus yesterday's close.
func openGapPct(series *models.MarketSeries) float64 {
	n := series.Len()
	if n < 2 {
		return 0
	}
	return pctChange(series.Bars[n-2].Close, series.Bars[n-1].Open)
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}
