package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"FinSight/internal/domain/models"
	domsvc "FinSight/internal/domain/service"
	xhttp "FinSight/pkg/http"
	"FinSight/pkg/util"
)

// Client is the primary bar source, backed by the Finnhub REST API.
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
		cfg.BaseURL = "https://finnhub.io/api/v1"
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

func (c *Client) Name() string               { return "finnhub" }
func (c *Client) MinInterval() time.Duration { return c.minInterval }

type candleResponse struct {
	Close  []float64 `json:"c"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Open   []float64 `json:"o"`
	Times  []int64   `json:"t"`
	Volume []float64 `json:"v"`
	Status string    `json:"s"`
}

func (c *Client) FetchBars(ctx context.Context, ticker string, lookbackDays int) domsvc.FetchResult {
	return c.fetchCandles(ctx, ticker, lookbackDays)
}

func (c *Client) FetchIndex(ctx context.Context, lookbackDays int) domsvc.FetchResult {
	return c.fetchCandles(ctx, c.indexSymbol, lookbackDays)
}

func (c *Client) fetchCandles(ctx context.Context, symbol string, lookbackDays int) domsvc.FetchResult {
	from, now := util.LookbackRange(time.Now(), lookbackDays)

	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/stock/candle",
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"resolution": {"D"},
			"from":       {strconv.FormatInt(from.Unix(), 10)},
			"to":         {strconv.FormatInt(now.Unix(), 10)},
			"token":      {c.apiKey},
		},
	})
	if err != nil {
		return domsvc.FetchResult{Outcome: domsvc.OutcomeUnavailable, Err: fmt.Errorf("finnhub candles: %w", err)}
	}
	defer resp.Body.Close()

	if out, ok := classifyStatus(c.Name(), resp); !ok {
		return out
	}

	var cr candleResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return domsvc.FetchResult{Outcome: domsvc.OutcomeUnavailable, Err: fmt.Errorf("finnhub decode: %w", err)}
	}
	if cr.Status == "no_data" {
		return domsvc.FetchResult{Outcome: domsvc.OutcomeInvalidSymbol, Err: fmt.Errorf("finnhub: no data for %s", symbol)}
	}
	if cr.Status != "ok" {
		return domsvc.FetchResult{Outcome: domsvc.OutcomeUnavailable, Err: fmt.Errorf("finnhub: status %q", cr.Status)}
	}

	n := len(cr.Times)
	if len(cr.Close) != n || len(cr.Open) != n || len(cr.High) != n || len(cr.Low) != n || len(cr.Volume) != n {
		return domsvc.FetchResult{Outcome: domsvc.OutcomeUnavailable, Err: fmt.Errorf("finnhub: ragged candle arrays")}
	}

	bars := make([]models.PriceBar, 0, n)
	for i := 0; i < n; i++ {
		bars = append(bars, models.PriceBar{
			Timestamp: time.Unix(cr.Times[i], 0).UTC(),
			Open:      cr.Open[i],
			High:      cr.High[i],
			Low:       cr.Low[i],
			Close:     cr.Close[i],
			Volume:    cr.Volume[i],
		})
	}

	return domsvc.FetchResult{
		Outcome:   domsvc.OutcomeSuccess,
		Series:    &models.MarketSeries{Ticker: symbol, Bars: bars},
		FetchedAt: now,
	}
}

type metricResponse struct {
	Metric map[string]json.Number `json:"metric"`
}

// FetchFundamentals serves basic fundamentals from the metric endpoint.
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) (*models.FundamentalsSnapshot, error) {
	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/stock/metric",
		QueryParams: map[string][]string{
			"symbol": {ticker},
			"metric": {"all"},
			"token":  {c.apiKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("finnhub metric: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &models.RateLimitedError{Provider: c.Name()}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("finnhub metric: status %d: %s", resp.StatusCode, body)
	}

	var mr metricResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("finnhub metric decode: %w", err)
	}

	num := func(key string) float64 {
		if v, ok := mr.Metric[key]; ok {
			f, _ := v.Float64()
			return f
		}
		return 0
	}

	return &models.FundamentalsSnapshot{
		Ticker:    ticker,
		AsOf:      time.Now().UTC(),
		MarketCap: num("marketCapitalization"),
		PERatio:   num("peBasicExclExtraTTM"),
		EPS:       num("epsTTM"),
	}, nil
}

// classifyStatus maps transport-level status codes to outcomes shared by the
// candle endpoints. Returns ok=true when the body should be decoded.
func classifyStatus(name string, resp *http.Response) (domsvc.FetchResult, bool) {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retry := util.ParseRetryAfter(resp.Header.Get("Retry-After"))
		return domsvc.FetchResult{
			Outcome:    domsvc.OutcomeRateLimited,
			RetryAfter: retry,
			Err:        &models.RateLimitedError{Provider: name, RetryAfter: retry},
		}, false
	case resp.StatusCode == http.StatusNotFound:
		return domsvc.FetchResult{Outcome: domsvc.OutcomeInvalidSymbol, Err: fmt.Errorf("%s: not found", name)}, false
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domsvc.FetchResult{
			Outcome: domsvc.OutcomeUnavailable,
			Err:     fmt.Errorf("%s: status %d: %s", name, resp.StatusCode, body),
		}, false
	}
	return domsvc.FetchResult{}, true
}
