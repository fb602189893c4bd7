package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab-io/scorecast/internal/contracts"
)

func TestSentimentClient_FiltersWindowAndRatings(t *testing.T) {
	since := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"articles": [
			{"title": "fresh positive", "rating": 5, "published_at": %q},
			{"title": "stale", "rating": 4, "published_at": %q},
			{"title": "bad rating", "rating": 0, "published_at": %q},
			{"title": "fresh negative", "rating": 2, "published_at": %q}
		]}`,
			since.Add(24*time.Hour).Format(time.RFC3339),
			since.Add(-24*time.Hour).Format(time.RFC3339),
			since.Add(48*time.Hour).Format(time.RFC3339),
			since.Add(12*time.Hour).Format(time.RFC3339),
		)
	}))
	defer server.Close()

	client := NewSentimentClient(testHTTPClient(t), server.URL, "key")
	articles, err := client.GetRecentArticles(context.Background(), "AAPL", since)
	require.NoError(t, err)

	require.Len(t, articles, 2)
	assert.Equal(t, "fresh positive", articles[0].Title)
	assert.Equal(t, "fresh negative", articles[1].Title)
}

func TestSentimentClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewSentimentClient(testHTTPClient(t), server.URL, "key")
	_, err := client.GetRecentArticles(context.Background(), "AAPL", time.Now().AddDate(0, 0, -7))
	assert.ErrorIs(t, err, contracts.ErrProviderUnavailable)
}

func TestFundamentalsClient_GetFundamentals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/fundamentals/MSFT", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ticker": "MSFT",
			"market_cap": "3100000000000",
			"pe_ratio": "34.2",
			"pb_ratio": "11.8",
			"eps_growth": "0.18",
			"revenue_growth": ""
		}`))
	}))
	defer server.Close()

	client := NewFundamentalsClient(testHTTPClient(t), server.URL, "key")
	rec, err := client.GetFundamentals(context.Background(), "MSFT")
	require.NoError(t, err)

	assert.Equal(t, "3100000000000", rec.MarketCap)
	assert.Equal(t, "34.2", rec.PERatio)
	assert.Equal(t, "11.8", rec.PBRatio)
	assert.Equal(t, "0.18", rec.EPSGrowth)
	assert.Empty(t, rec.RevenueGrowth)
}
