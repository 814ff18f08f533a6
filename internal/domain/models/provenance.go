package models

// Provenance labels where a served series came from. The label decides the
// confidence penalty applied by the signal aggregator's ledger.
type Provenance string

const (
	ProvenanceLive          Provenance = "live"
	ProvenanceCacheFresh    Provenance = "cache_fresh"
	ProvenanceCacheStale    Provenance = "cache_stale"
	ProvenanceErrorFallback Provenance = "cache_error_fallback"
	ProvenanceUnavailable   Provenance = "unavailable"
)

// Penalty returns the fractional confidence reduction attached to the label.
// Staleness degrades monotonically: fresh (0) >= stale (-10%) >= error fallback (-15%).
func (p Provenance) Penalty() float64 {
	switch p {
	case ProvenanceCacheStale:
		return 0.10
	case ProvenanceErrorFallback:
		return 0.15
	default:
		return 0
	}
}

// IsValid reports whether p is one of the known labels.
func (p Provenance) IsValid() bool {
	switch p {
	case ProvenanceLive, ProvenanceCacheFresh, ProvenanceCacheStale, ProvenanceErrorFallback, ProvenanceUnavailable:
		return true
	}
	return false
}
