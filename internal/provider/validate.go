package provider

import (
	"sort"

	"FinSight/internal/domain/models"
)

// sanitizeSeries validates a raw payload before it can be cached: positive
// prices, high >= low envelope, strictly ascending timestamps. Invalid bars
// are dropped and counted, never silently accepted. An empty result after
// validation is a data integrity failure.
func sanitizeSeries(ticker string, bars []models.PriceBar) (*models.MarketSeries, int, error) {
	valid := make([]models.PriceBar, 0, len(bars))
	dropped := 0
	for _, b := range bars {
		if err := b.Validate(); err != nil {
			dropped++
			continue
		}
		valid = append(valid, b)
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].Timestamp.Before(valid[j].Timestamp)
	})

	// Deduplicate equal timestamps, keeping the first occurrence.
	deduped := valid[:0]
	for i, b := range valid {
		if i > 0 && !b.Timestamp.After(deduped[len(deduped)-1].Timestamp) {
			dropped++
			continue
		}
		deduped = append(deduped, b)
	}

	if len(deduped) == 0 {
		return nil, dropped, &models.DataIntegrityError{
			Ticker:  ticker,
			Reason:  "no valid bars in payload",
			Dropped: dropped,
		}
	}

	return &models.MarketSeries{Ticker: ticker, Bars: deduped}, dropped, nil
}
