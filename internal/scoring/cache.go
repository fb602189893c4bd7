package scoring

import (
	"sync"
	"time"

	"github.com/quantlab-io/scorecast/internal/contracts"
)

// scoreCache is the in-process TTL cache in front of the scorer. It is
// owned by the service instance and takes an injectable clock so tests
// stay deterministic and parallel-safe.
type scoreCache struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	score     *contracts.Score
	expiresAt time.Time
}

func newScoreCache(ttl time.Duration, clock func() time.Time) *scoreCache {
	return &scoreCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

// get returns a live cached score or nil
func (c *scoreCache) get(ticker string) *contracts.Score {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[ticker]
	if !ok {
		return nil
	}
	if c.clock().After(entry.expiresAt) {
		delete(c.entries, ticker)
		return nil
	}
	return entry.score
}

// put stores a score until its TTL lapses
func (c *scoreCache) put(ticker string, score *contracts.Score) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[ticker] = cacheEntry{
		score:     score,
		expiresAt: c.clock().Add(c.ttl),
	}
}
