// Package providers implements the upstream data clients behind the
// contracts provider interfaces. Each client goes through the shared
// retrying HTTP client, so pacing and backoff live in one place.
package providers

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/pkg/httputil"
)

// BarsClient fetches daily OHLCV aggregates from a polygon-style API
type BarsClient struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
}

func NewBarsClient(http *httputil.Client, baseURL, apiKey string) *BarsClient {
	return &BarsClient{http: http, baseURL: baseURL, apiKey: apiKey}
}

// aggsResponse mirrors the aggregates endpoint payload
type aggsResponse struct {
	Ticker       string      `json:"ticker"`
	ResultsCount int         `json:"resultsCount"`
	Results      []aggResult `json:"results"`
	Status       string      `json:"status"`
}

type aggResult struct {
	Timestamp int64   `json:"t"` // epoch millis
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

// GetBars returns daily bars for [from, to] in ascending time order
func (c *BarsClient) GetBars(ctx context.Context, ticker string, from, to time.Time) ([]contracts.Bar, error) {
	endpoint := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?adjusted=true&sort=asc&limit=50000&apiKey=%s",
		c.baseURL,
		url.PathEscape(ticker),
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		url.QueryEscape(c.apiKey),
	)

	var resp aggsResponse
	if err := c.http.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("%w: bars for %s: %v", contracts.ErrProviderUnavailable, ticker, err)
	}

	bars := make([]contracts.Bar, 0, len(resp.Results))
	for _, r := range resp.Results {
		bars = append(bars, contracts.Bar{
			Timestamp: time.UnixMilli(r.Timestamp).UTC(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}

	// The endpoint is asked for ascending order but the invariant is
	// ours to keep.
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	return bars, nil
}
