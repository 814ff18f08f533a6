package regime

import (
	"math"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/pkg/util"
)

// Classification thresholds. Labels derive only from time-of-day, index
// correlation, and volume/volatility statistics already computed upstream.
const (
	IndexMovePct      = 1.0
	CoMoveSlackPct    = 0.75
	BasketAmplitude   = 1.5
	ThinVolumeRatio   = 0.6
	ChopRangePct      = 0.5
	ActiveVolumeRatio = 1.2
	GapThresholdPct   = 1.5
	LastHourVolumeMin = 1.1
)

// Input is the read-only snapshot the classifier works from. Everything in it
// was computed by earlier stages; the classifier adds no data of its own.
type Input struct {
	Now      time.Time
	Location *time.Location

	TickerChangePct float64
	IndexChangePct  float64
	VolumeRatio     float64
	BandWidthRatio  float64
	OpenGapPct      float64

	IndexAvailable bool
	IndexSource    models.Provenance
}

// Classify labels the current moment with zero or more regime labels. It runs
// after the signal and pattern detector and cannot feed back into either; the
// result is a pure annotation for the output formatter. When the index data
// behind the input is unavailable, the label set is empty rather than blocking
// the pipeline, and confidence is untouched.
func Classify(in Input) models.RegimeContext {
	if !in.IndexAvailable {
		return models.RegimeContext{DataSource: models.ProvenanceUnavailable}
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	local := in.Now.In(loc)

	var labels []models.RegimeLabel
	tag := func(l models.RegimeLabel) { labels = append(labels, l) }

	sameSign := in.TickerChangePct*in.IndexChangePct > 0

	if math.Abs(in.IndexChangePct) >= IndexMovePct && sameSign &&
		math.Abs(in.TickerChangePct-in.IndexChangePct) <= CoMoveSlackPct {
		tag(models.RegimeIndexLedMove)
	}

	if in.VolumeRatio > 0 && in.VolumeRatio < ThinVolumeRatio &&
		math.Abs(in.TickerChangePct) < ChopRangePct {
		tag(models.RegimeLowLiquidity)
	}

	if util.InClockWindow(local, 13, 30, 14, 30) && in.VolumeRatio >= ActiveVolumeRatio {
		tag(models.RegimePostLunchVol)
	}

	if util.IsThirdFriday(local) {
		tag(models.RegimeExpiryPressure)
	}

	if sameSign && math.Abs(in.IndexChangePct) >= IndexMovePct &&
		math.Abs(in.TickerChangePct) >= math.Abs(in.IndexChangePct)*BasketAmplitude {
		tag(models.RegimeSectorBasket)
	}

	if math.Abs(in.OpenGapPct) >= GapThresholdPct && util.InClockWindow(local, 9, 30, 10, 0) {
		tag(models.RegimePreMarketGap)
	}

	if util.InClockWindow(local, 15, 0, 16, 0) && in.VolumeRatio >= LastHourVolumeMin {
		tag(models.RegimeLastHourVol)
	}

	return models.RegimeContext{Labels: labels, DataSource: in.IndexSource}
}
