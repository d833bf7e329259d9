package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Quote is a ticker price lookup result. A failed lookup still returns
// a Quote, with Error set, so callers always have something to render.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         int64     `json:"price"`
	ChangePercent float64   `json:"change_percent"`
	Time          time.Time `json:"time"`
	Error         string    `json:"error,omitempty"`
}

const (
	requestTimeout = 5 * time.Second
	maxAttempts    = 2
	retryDelay     = 300 * time.Millisecond
)

// Client fetches quotes from an upstream price feed.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type quoteResponse struct {
	Symbol        string  `json:"symbol"`
	Price         int64   `json:"price"`
	ChangePercent float64 `json:"changePercent"`
}

// GetPrice looks up the current price of a symbol. It retries once on
// transient failure and degrades to an error-carrying Quote rather than
// failing the caller.
func (c *Client) GetPrice(ctx context.Context, symbol string) Quote {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return Quote{Symbol: symbol, Time: time.Now(), Error: ctx.Err().Error()}
			case <-time.After(retryDelay):
			}
		}

		quote, err := c.fetch(ctx, symbol)
		if err == nil {
			return quote
		}
		lastErr = err
		log.Printf("⚠️ [STOCK] lookup %s attempt %d/%d: %v", symbol, attempt, maxAttempts, err)
	}

	return Quote{Symbol: symbol, Time: time.Now(), Error: lastErr.Error()}
}

func (c *Client) fetch(ctx context.Context, symbol string) (Quote, error) {
	url := fmt.Sprintf("%s/v1/quote?symbol=%s", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Quote{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Quote{}, fmt.Errorf("quote feed returned status %d", resp.StatusCode)
	}

	var parsed quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Quote{}, fmt.Errorf("decode quote: %w", err)
	}
	if parsed.Price <= 0 {
		return Quote{}, fmt.Errorf("no price for symbol %s", symbol)
	}

	return Quote{
		Symbol:        parsed.Symbol,
		Price:         parsed.Price,
		ChangePercent: parsed.ChangePercent,
		Time:          time.Now(),
	}, nil
}
