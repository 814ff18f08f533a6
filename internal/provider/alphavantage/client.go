package alphavantage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"FinSight/internal/domain/models"
	xhttp "FinSight/pkg/http"
)

// Client is the tertiary, fundamentals-only source in the chain.
type Client struct {
	apiKey  string
	baseURL string
	http    *xhttp.Client
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.alphavantage.co/query"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
	}
}

func (c *Client) Name() string { return "alphavantage" }

type overviewResponse struct {
	Symbol        string `json:"Symbol"`
	Sector        string `json:"Sector"`
	MarketCap     string `json:"MarketCapitalization"`
	PERatio       string `json:"PERatio"`
	EPS           string `json:"EPS"`
	Note          string `json:"Note"`
	ErrorMessage  string `json:"Error Message"`
}

// FetchFundamentals serves the company overview. The free tier signals rate
// limiting through a "Note" field on an otherwise-200 response.
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) (*models.FundamentalsSnapshot, error) {
	var ov overviewResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"function": {"OVERVIEW"},
			"symbol":   {ticker},
			"apikey":   {c.apiKey},
		},
	}, &ov)
	if err != nil {
		return nil, fmt.Errorf("alphavantage overview: %w", err)
	}

	if ov.Note != "" {
		return nil, &models.RateLimitedError{Provider: c.Name(), RetryAfter: time.Minute}
	}
	if ov.ErrorMessage != "" || ov.Symbol == "" {
		return nil, &models.InvalidTickerError{Ticker: ticker}
	}

	parse := func(s string) float64 {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}

	return &models.FundamentalsSnapshot{
		Ticker:    ov.Symbol,
		AsOf:      time.Now().UTC(),
		MarketCap: parse(ov.MarketCap),
		PERatio:   parse(ov.PERatio),
		EPS:       parse(ov.EPS),
		Sector:    ov.Sector,
	}, nil
}
