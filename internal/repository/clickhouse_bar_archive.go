package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FinSight/internal/domain/models"
	applogger "FinSight/pkg/logger"
)

// ClickHouseBarArchive persists validated series as the last-resort fallback
// tier behind the in-memory/Redis cache. It only ever stores bars that passed
// payload validation.
type ClickHouseBarArchive struct {
	db    *sql.DB
	table string
	log   *applogger.Logger
}

func NewClickHouseBarArchive(db *sql.DB, table string) *ClickHouseBarArchive {
	return &ClickHouseBarArchive{db: db, table: table}
}

// SetLogger injects a structured logger.
func (a *ClickHouseBarArchive) SetLogger(l *applogger.Logger) { a.log = l }

// Init ensures the archive table exists (idempotent).
func (a *ClickHouseBarArchive) Init(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ticker String,
		ts DateTime,
		open Float64,
		high Float64,
		low Float64,
		close Float64,
		volume Float64,
		fetched_at DateTime,
		source String
	) ENGINE = ReplacingMergeTree(fetched_at) ORDER BY (ticker, ts)`, a.table)
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("archive init: %w", err)
	}
	return nil
}

func (a *ClickHouseBarArchive) Store(ctx context.Context, series *models.MarketSeries, fetchedAt time.Time, source string) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (ticker, ts, open, high, low, close, volume, fetched_at, source) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", a.table))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("archive prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range series.Bars {
		if _, err := stmt.ExecContext(ctx, series.Ticker, b.Timestamp, b.Open, b.High, b.Low, b.Close, b.Volume, fetchedAt, source); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("archive insert %s: %w", series.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive commit: %w", err)
	}
	if a.log != nil {
		a.log.Debug("series archived",
			applogger.String("ticker", series.Ticker),
			applogger.Int("bars", series.Len()))
	}
	return nil
}

// Load reads back the newest bars for a ticker; limit <= 0 means all.
func (a *ClickHouseBarArchive) Load(ctx context.Context, ticker string, limit int) (*models.MarketSeries, time.Time, error) {
	q := fmt.Sprintf(
		"SELECT ts, open, high, low, close, volume, fetched_at FROM %s FINAL WHERE ticker = ? ORDER BY ts", a.table)
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := a.db.QueryContext(ctx, q, ticker)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("archive query %s: %w", ticker, err)
	}
	defer rows.Close()

	series := &models.MarketSeries{Ticker: ticker}
	var newest time.Time
	for rows.Next() {
		var b models.PriceBar
		var fetchedAt time.Time
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &fetchedAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("archive scan: %w", err)
		}
		if fetchedAt.After(newest) {
			newest = fetchedAt
		}
		series.Bars = append(series.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("archive rows: %w", err)
	}
	return series, newest, nil
}

func (a *ClickHouseBarArchive) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *ClickHouseBarArchive) Close() error {
	return a.db.Close()
}
