package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/pkg/httputil"
)

// SentimentClient fetches recent rated news articles for a ticker
type SentimentClient struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
}

func NewSentimentClient(http *httputil.Client, baseURL, apiKey string) *SentimentClient {
	return &SentimentClient{http: http, baseURL: baseURL, apiKey: apiKey}
}

type newsResponse struct {
	Articles []newsArticle `json:"articles"`
}

type newsArticle struct {
	Title       string    `json:"title"`
	Rating      int       `json:"rating"`
	PublishedAt time.Time `json:"published_at"`
}

// GetRecentArticles returns articles published at or after since.
// Upstream filtering is advisory; the window is enforced here so a
// sloppy provider cannot leak stale articles into the average.
func (c *SentimentClient) GetRecentArticles(ctx context.Context, ticker string, since time.Time) ([]contracts.NewsArticle, error) {
	endpoint := fmt.Sprintf("%s/v1/news/%s?since=%s&apiKey=%s",
		c.baseURL,
		url.PathEscape(ticker),
		url.QueryEscape(since.Format(time.RFC3339)),
		url.QueryEscape(c.apiKey),
	)

	var resp newsResponse
	if err := c.http.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("%w: news for %s: %v", contracts.ErrProviderUnavailable, ticker, err)
	}

	articles := make([]contracts.NewsArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.PublishedAt.Before(since) {
			continue
		}
		if a.Rating < 1 || a.Rating > 5 {
			continue
		}
		articles = append(articles, contracts.NewsArticle{
			Title:       a.Title,
			Rating:      a.Rating,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
