package models

// RegimeLabel is a market-condition annotation derived purely from
// time-of-day, index correlation, and volume/volatility statistics.
// Never sourced from news or sentiment.
type RegimeLabel string

const (
	RegimeIndexLedMove   RegimeLabel = "index_led_move"
	RegimeLowLiquidity   RegimeLabel = "low_liquidity_chop"
	RegimePostLunchVol   RegimeLabel = "post_lunch_volatility"
	RegimeExpiryPressure RegimeLabel = "expiry_pressure_day"
	RegimeSectorBasket   RegimeLabel = "sector_basket_move"
	RegimePreMarketGap   RegimeLabel = "pre_market_gap"
	RegimeLastHourVol    RegimeLabel = "last_hour_volatility"
)

// RegimeContext annotates a result with regime labels and the provenance of
// the data they were derived from. Strictly read-only: it is computed after
// the signal and detections and can alter neither.
type RegimeContext struct {
	Labels     []RegimeLabel `json:"labels"`
	DataSource Provenance    `json:"data_source"`
}

// Has reports whether the label is present.
func (r RegimeContext) Has(label RegimeLabel) bool {
	for _, l := range r.Labels {
		if l == label {
			return true
		}
	}
	return false
}
