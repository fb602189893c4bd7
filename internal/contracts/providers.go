package contracts

import (
	"context"
	"time"
)

// BarProvider returns ascending-time daily bars for a ticker. An empty
// result means the provider has nothing for the range; callers treat it
// as insufficient data, not as a zero-filled series.
type BarProvider interface {
	GetBars(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error)
}

// FundamentalRecord carries string-or-missing fundamental fields as the
// upstream returns them. Coercion failures fall back to documented
// defaults in the scoring service.
type FundamentalRecord struct {
	MarketCap     string `json:"market_cap"`
	PERatio       string `json:"pe_ratio"`
	PBRatio       string `json:"pb_ratio"`
	EPSGrowth     string `json:"eps_growth"`
	RevenueGrowth string `json:"revenue_growth"`
}

// FundamentalProvider returns the latest fundamental record for a ticker
type FundamentalProvider interface {
	GetFundamentals(ctx context.Context, ticker string) (*FundamentalRecord, error)
}

// NewsArticle is one scored article from the sentiment provider
type NewsArticle struct {
	Title       string    `json:"title"`
	Rating      int       `json:"rating"` // 1-5
	PublishedAt time.Time `json:"published_at"`
}

// SentimentProvider returns recent articles for a ticker over a
// trailing window
type SentimentProvider interface {
	GetRecentArticles(ctx context.Context, ticker string, since time.Time) ([]NewsArticle, error)
}
