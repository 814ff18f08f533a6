package indicator

import (
	"math"

	"FinSight/internal/domain/models"
)

// Window lengths used by the engine. Named here so tests exercise thresholds,
// not magic numbers.
const (
	SMAShortPeriod  = 20
	SMALongPeriod   = 50
	EMAFastPeriod   = 12
	EMASlowPeriod   = 26
	MACDSignalSpan  = 9
	RSIPeriod       = 14
	BollingerPeriod = 20
	BollingerWidth  = 2.0

	// MinDailyBars is the minimum series length for the full daily indicator set.
	MinDailyBars = 50
)

// Compute derives the full indicator set from a market series. It is a pure
// function: same series in, same set out. Series shorter than MinDailyBars
// produce a typed error, never a partial or zero-filled set.
func Compute(series *models.MarketSeries) (*models.IndicatorSet, error) {
	if series.Len() < MinDailyBars {
		return nil, &models.InsufficientDataError{
			Ticker: series.Ticker,
			Have:   series.Len(),
			Need:   MinDailyBars,
		}
	}

	closes := series.Closes()
	last, _ := series.Last()

	macdLine, macdSignal := MACD(closes)
	upper, middle, lower := Bollinger(closes, BollingerPeriod, BollingerWidth)

	set := &models.IndicatorSet{
		Ticker:          series.Ticker,
		AsOf:            last.Timestamp,
		SMA20:           SMA(closes, SMAShortPeriod),
		SMA50:           SMA(closes, SMALongPeriod),
		EMA12:           EMA(closes, EMAFastPeriod),
		EMA26:           EMA(closes, EMASlowPeriod),
		RSI14:           RSI(closes, RSIPeriod),
		MACDLine:        macdLine,
		MACDSignal:      macdSignal,
		MACDHistogram:   macdLine - macdSignal,
		BollingerUpper:  upper,
		BollingerMiddle: middle,
		BollingerLower:  lower,
		LastClose:       last.Close,
	}
	return set, nil
}

// ComputeWithSession is Compute plus a session VWAP from intraday bars.
// The VWAP slot stays unset when the session is empty.
func ComputeWithSession(series *models.MarketSeries, session []models.PriceBar) (*models.IndicatorSet, error) {
	set, err := Compute(series)
	if err != nil {
		return nil, err
	}
	if v, ok := VWAP(session); ok {
		set.VWAP = v
		set.VWAPSet = true
	}
	return set, nil
}

// SMA returns the simple moving average of the last period values.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA returns the exponential moving average over all values, seeded with the
// SMA of the first period.
func EMA(values []float64, period int) float64 {
	s := emaSeries(values, period)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

func emaSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	mult := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)

	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	ema := seed / float64(period)
	out = append(out, ema)

	for _, v := range values[period:] {
		ema = (v-ema)*mult + ema
		out = append(out, ema)
	}
	return out
}

// RSI computes the Wilder relative strength index, bounded to [0, 100].
func RSI(values []float64, period int) float64 {
	if period <= 0 || len(values) < period+1 {
		return 0
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line (EMA12 - EMA26) and its 9-period signal line.
func MACD(values []float64) (line, signal float64) {
	fast := emaSeries(values, EMAFastPeriod)
	slow := emaSeries(values, EMASlowPeriod)
	if len(slow) == 0 || len(fast) < len(slow) {
		return 0, 0
	}

	// Align: slow series starts later; trim fast to matching tail.
	fast = fast[len(fast)-len(slow):]
	macd := make([]float64, len(slow))
	for i := range slow {
		macd[i] = fast[i] - slow[i]
	}

	line = macd[len(macd)-1]
	sig := emaSeries(macd, MACDSignalSpan)
	if len(sig) > 0 {
		signal = sig[len(sig)-1]
	}
	return line, signal
}

// Bollinger returns upper, middle, lower bands: SMA(period) +/- width stddevs.
func Bollinger(values []float64, period int, width float64) (upper, middle, lower float64) {
	if period <= 0 || len(values) < period {
		return 0, 0, 0
	}
	window := values[len(values)-period:]
	middle = SMA(values, period)

	var variance float64
	for _, v := range window {
		d := v - middle
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))

	return middle + width*std, middle, middle - width*std
}

// VWAP is the cumulative (typical price x volume) / cumulative volume over the
// session bars. Returns false when no volume traded.
func VWAP(session []models.PriceBar) (float64, bool) {
	var pv, vol float64
	for _, b := range session {
		typical := (b.High + b.Low + b.Close) / 3
		pv += typical * b.Volume
		vol += b.Volume
	}
	if vol == 0 {
		return 0, false
	}
	return pv / vol, true
}
