package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FinSight/internal/domain/repository"
	"FinSight/pkg/cache"
)

// DefaultRetention keeps entries long past staleness so the error-fallback
// tier can serve them regardless of age.
const DefaultRetention = 7 * 24 * time.Hour

// StoreCache implements repository.BarCache on top of pkg/cache.Service, so
// the same code runs against the in-memory store, Redis, or the layered pair.
type StoreCache struct {
	store     cache.Service
	retention time.Duration
}

func NewStoreCache(store cache.Service, retention time.Duration) *StoreCache {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &StoreCache{store: store, retention: retention}
}

func barKey(ticker string) string { return "bars:" + ticker }

func (c *StoreCache) Get(ctx context.Context, ticker string) (*repository.CacheEntry, bool, error) {
	var raw string
	err := c.store.Get(ctx, barKey(ticker), &raw)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get %s: %w", ticker, err)
	}

	var entry repository.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", ticker, err)
	}
	return &entry, true, nil
}

func (c *StoreCache) Put(ctx context.Context, entry *repository.CacheEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", entry.Ticker, err)
	}
	if err := c.store.Set(ctx, barKey(entry.Ticker), string(b), c.retention); err != nil {
		return fmt.Errorf("cache put %s: %w", entry.Ticker, err)
	}
	return nil
}
