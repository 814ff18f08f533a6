package models

import "time"

// AuditEvent records one confidence degradation or provider fallback with its
// cause. Every adjustment the ledger applies produces exactly one event.
type AuditEvent struct {
	Ticker    string    `json:"ticker"`
	Stage     string    `json:"stage"`
	Delta     float64   `json:"delta"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
