package regime

import (
	"testing"
	"time"

	"FinSight/internal/domain/models"
)

func baseInput(now time.Time) Input {
	return Input{
		Now:            now,
		Location:       time.UTC,
		IndexAvailable: true,
		IndexSource:    models.ProvenanceLive,
	}
}

func at(h, m int) time.Time {
	// 2024-06-05 is a Wednesday.
	return time.Date(2024, 6, 5, h, m, 0, 0, time.UTC)
}

func hasLabel(ctx models.RegimeContext, l models.RegimeLabel) bool {
	return ctx.Has(l)
}

func TestClassifyUnavailableIndex(t *testing.T) {
	in := baseInput(at(12, 0))
	in.IndexAvailable = false
	ctx := Classify(in)
	if len(ctx.Labels) != 0 {
		t.Fatalf("unavailable index must produce no labels: %v", ctx.Labels)
	}
	if ctx.DataSource != models.ProvenanceUnavailable {
		t.Fatalf("expected unavailable provenance, got %s", ctx.DataSource)
	}
}

func TestClassifyIndexLedMove(t *testing.T) {
	in := baseInput(at(12, 0))
	in.IndexChangePct = 1.4
	in.TickerChangePct = 1.2
	ctx := Classify(in)
	if !hasLabel(ctx, models.RegimeIndexLedMove) {
		t.Fatalf("expected index-led move: %v", ctx.Labels)
	}
}

func TestClassifyIndexLedMoveRequiresSameSign(t *testing.T) {
	in := baseInput(at(12, 0))
	in.IndexChangePct = 1.4
	in.TickerChangePct = -1.2
	ctx := Classify(in)
	if hasLabel(ctx, models.RegimeIndexLedMove) {
		t.Fatalf("opposite-sign move must not be index-led: %v", ctx.Labels)
	}
}

func TestClassifyLowLiquidityChop(t *testing.T) {
	in := baseInput(at(12, 0))
	in.VolumeRatio = 0.4
	in.TickerChangePct = 0.2
	ctx := Classify(in)
	if !hasLabel(ctx, models.RegimeLowLiquidity) {
		t.Fatalf("expected low-liquidity chop: %v", ctx.Labels)
	}
}

func TestClassifyPostLunchWindow(t *testing.T) {
	in := baseInput(at(13, 45))
	in.VolumeRatio = 1.5
	ctx := Classify(in)
	if !hasLabel(ctx, models.RegimePostLunchVol) {
		t.Fatalf("expected post-lunch volatility: %v", ctx.Labels)
	}

	in.Now = at(14, 30)
	ctx = Classify(in)
	if hasLabel(ctx, models.RegimePostLunchVol) {
		t.Fatalf("window end is exclusive: %v", ctx.Labels)
	}
}

func TestClassifyExpiryPressure(t *testing.T) {
	in := baseInput(time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)) // third Friday
	ctx := Classify(in)
	if !hasLabel(ctx, models.RegimeExpiryPressure) {
		t.Fatalf("expected expiry pressure on third friday: %v", ctx.Labels)
	}
}

func TestClassifySectorBasket(t *testing.T) {
	in := baseInput(at(12, 0))
	in.IndexChangePct = 1.2
	in.TickerChangePct = 2.4
	ctx := Classify(in)
	if !hasLabel(ctx, models.RegimeSectorBasket) {
		t.Fatalf("expected sector basket move: %v", ctx.Labels)
	}
}

func TestClassifyPreMarketGapWindow(t *testing.T) {
	in := baseInput(at(9, 45))
	in.OpenGapPct = 2.0
	ctx := Classify(in)
	if !hasLabel(ctx, models.RegimePreMarketGap) {
		t.Fatalf("expected pre-market gap: %v", ctx.Labels)
	}

	in.Now = at(10, 30)
	ctx = Classify(in)
	if hasLabel(ctx, models.RegimePreMarketGap) {
		t.Fatalf("gap label only applies in the opening window: %v", ctx.Labels)
	}
}

func TestClassifyLastHour(t *testing.T) {
	in := baseInput(at(15, 30))
	in.VolumeRatio = 1.2
	ctx := Classify(in)
	if !hasLabel(ctx, models.RegimeLastHourVol) {
		t.Fatalf("expected last-hour volatility: %v", ctx.Labels)
	}
}

func TestClassifyPreservesIndexProvenance(t *testing.T) {
	in := baseInput(at(12, 0))
	in.IndexSource = models.ProvenanceCacheStale
	ctx := Classify(in)
	if ctx.DataSource != models.ProvenanceCacheStale {
		t.Fatalf("provenance must pass through: %s", ctx.DataSource)
	}
}
