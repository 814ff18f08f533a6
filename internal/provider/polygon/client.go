package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"FinSight/internal/domain/models"
	domsvc "FinSight/internal/domain/service"
	xhttp "FinSight/pkg/http"
	"FinSight/pkg/util"
)

// Client is the secondary bar source, backed by Polygon daily aggregates.
type Client struct {
	apiKey      string
	baseURL     string
	indexSymbol string
	minInterval time.Duration
	http        *xhttp.Client
}

type Config struct {
	APIKey      string
	BaseURL     string
	IndexSymbol string
	MinInterval time.Duration
	Timeout     time.Duration
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.polygon.io"
	}
	if cfg.IndexSymbol == "" {
		cfg.IndexSymbol = "SPY"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		indexSymbol: cfg.IndexSymbol,
		minInterval: cfg.MinInterval,
		http:        xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
	}
}

func (c *Client) Name() string               { return "polygon" }
func (c *Client) MinInterval() time.Duration { return c.minInterval }

type aggsResponse struct {
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Results      []struct {
		Volume float64 `json:"v"`
		Open   float64 `json:"o"`
		Close  float64 `json:"c"`
		High   float64 `json:"h"`
		Low    float64 `json:"l"`
		TimeMS int64   `json:"t"`
	} `json:"results"`
}

func (c *Client) FetchBars(ctx context.Context, ticker string, lookbackDays int) domsvc.FetchResult {
	return c.fetchAggs(ctx, ticker, lookbackDays)
}

func (c *Client) FetchIndex(ctx context.Context, lookbackDays int) domsvc.FetchResult {
	return c.fetchAggs(ctx, c.indexSymbol, lookbackDays)
}

func (c *Client) fetchAggs(ctx context.Context, symbol string, lookbackDays int) domsvc.FetchResult {
	from, now := util.LookbackRange(time.Now(), lookbackDays)
	url := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s",
		c.baseURL, symbol, from.Format("2006-01-02"), now.Format("2006-01-02"))

	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    url,
		QueryParams: map[string][]string{
			"adjusted": {"true"},
			"sort":     {"asc"},
			"apiKey":   {c.apiKey},
		},
	})
	if err != nil {
		return domsvc.FetchResult{Outcome: domsvc.OutcomeUnavailable, Err: fmt.Errorf("polygon aggs: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retry := util.ParseRetryAfter(resp.Header.Get("Retry-After"))
		return domsvc.FetchResult{
			Outcome:    domsvc.OutcomeRateLimited,
			RetryAfter: retry,
			Err:        &models.RateLimitedError{Provider: c.Name(), RetryAfter: retry},
		}
	case resp.StatusCode == http.StatusNotFound:
		return domsvc.FetchResult{Outcome: domsvc.OutcomeInvalidSymbol, Err: fmt.Errorf("polygon: unknown ticker %s", symbol)}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domsvc.FetchResult{
			Outcome: domsvc.OutcomeUnavailable,
			Err:     fmt.Errorf("polygon: status %d: %s", resp.StatusCode, body),
		}
	}

	var ar aggsResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return domsvc.FetchResult{Outcome: domsvc.OutcomeUnavailable, Err: fmt.Errorf("polygon decode: %w", err)}
	}
	if ar.Status != "OK" && ar.Status != "DELAYED" {
		return domsvc.FetchResult{Outcome: domsvc.OutcomeUnavailable, Err: fmt.Errorf("polygon: status %q", ar.Status)}
	}
	if ar.ResultsCount == 0 {
		return domsvc.FetchResult{Outcome: domsvc.OutcomeUnavailable, Err: fmt.Errorf("polygon: empty range for %s", symbol)}
	}

	bars := make([]models.PriceBar, 0, len(ar.Results))
	for _, r := range ar.Results {
		bars = append(bars, models.PriceBar{
			Timestamp: time.UnixMilli(r.TimeMS).UTC(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}

	return domsvc.FetchResult{
		Outcome:   domsvc.OutcomeSuccess,
		Series:    &models.MarketSeries{Ticker: symbol, Bars: bars},
		FetchedAt: now,
	}
}
