package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/pkg/httputil"
)

// FundamentalsClient fetches the latest fundamental snapshot for a
// ticker. Fields come back as strings or empty; coercion happens
// downstream in the scoring service.
type FundamentalsClient struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
}

func NewFundamentalsClient(http *httputil.Client, baseURL, apiKey string) *FundamentalsClient {
	return &FundamentalsClient{http: http, baseURL: baseURL, apiKey: apiKey}
}

type fundamentalsResponse struct {
	Ticker        string `json:"ticker"`
	MarketCap     string `json:"market_cap"`
	PERatio       string `json:"pe_ratio"`
	PBRatio       string `json:"pb_ratio"`
	EPSGrowth     string `json:"eps_growth"`
	RevenueGrowth string `json:"revenue_growth"`
}

// GetFundamentals returns the latest fundamental record for a ticker
func (c *FundamentalsClient) GetFundamentals(ctx context.Context, ticker string) (*contracts.FundamentalRecord, error) {
	endpoint := fmt.Sprintf("%s/v1/fundamentals/%s?apiKey=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(c.apiKey))

	var resp fundamentalsResponse
	if err := c.http.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("%w: fundamentals for %s: %v", contracts.ErrProviderUnavailable, ticker, err)
	}

	return &contracts.FundamentalRecord{
		MarketCap:     resp.MarketCap,
		PERatio:       resp.PERatio,
		PBRatio:       resp.PBRatio,
		EPSGrowth:     resp.EPSGrowth,
		RevenueGrowth: resp.RevenueGrowth,
	}, nil
}
