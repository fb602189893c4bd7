// Package scoring is the production serving path: it composes provider
// data into a feature vector, scores every horizon and explains the
// result. Nothing in this package ever fails a scoring call; every
// upstream problem degrades to a documented default.
package scoring

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/internal/features"
	"github.com/quantlab-io/scorecast/internal/scorer"
	"github.com/quantlab-io/scorecast/pkg/redis"
)

// barLookbackDays covers the 200-bar minimum with slack for weekends
// and holidays
const barLookbackDays = 420

// Service produces Score records for tickers
type Service struct {
	bars         contracts.BarProvider
	fundamentals contracts.FundamentalProvider
	sentiment    contracts.SentimentProvider
	scorer       *scorer.Scorer

	cache       *scoreCache
	sharedCache *redis.Cache
	ttl         time.Duration
	callTimeout time.Duration
	clock       func() time.Time
	log         zerolog.Logger
}

// Options configures a Service
type Options struct {
	// ScoreTTL bounds both the in-process and shared cache entries
	ScoreTTL time.Duration
	// CallTimeout applies per provider call; a timeout is a provider
	// failure, not a fatal error
	CallTimeout time.Duration
	// SharedCache is optional; nil disables the redis layer
	SharedCache *redis.Cache
	// Clock is injectable for tests; nil means time.Now
	Clock func() time.Time
}

// NewService wires the serving path
func NewService(
	bars contracts.BarProvider,
	fundamentals contracts.FundamentalProvider,
	sentiment contracts.SentimentProvider,
	sc *scorer.Scorer,
	opts Options,
	log zerolog.Logger,
) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := opts.ScoreTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Service{
		bars:         bars,
		fundamentals: fundamentals,
		sentiment:    sentiment,
		scorer:       sc,
		cache:        newScoreCache(ttl, clock),
		sharedCache:  opts.SharedCache,
		ttl:          ttl,
		callTimeout:  timeout,
		clock:        clock,
		log:          log.With().Str("component", "scoring.service").Logger(),
	}
}

// ScoreTicker produces a Score for one ticker. It never returns an
// error: provider failures, missing fields and untrained horizons all
// degrade to their documented defaults, and the per-provider Sources
// map records which slices actually used real data.
func (s *Service) ScoreTicker(ctx context.Context, ticker string) *contracts.Score {
	if cached := s.cache.get(ticker); cached != nil {
		return cached
	}
	if cached := s.sharedGet(ctx, ticker); cached != nil {
		s.cache.put(ticker, cached)
		return cached
	}

	sources := make(map[string]contracts.DataStatus)
	vector := make(contracts.FeatureVector)

	vector.Merge(s.technicalFeatures(ctx, ticker, sources))
	vector.Merge(s.fundamentalFeatures(ctx, ticker, sources))
	vector["news_sentiment_7d"] = s.sentimentScore(ctx, ticker, sources)

	horizons := make(map[contracts.Horizon]contracts.HorizonScore, len(contracts.Horizons()))
	for horizon, predicted := range s.scorer.PredictAll(vector) {
		if predicted == nil {
			// No trained model for this horizon: neutral default,
			// other horizons are unaffected.
			horizons[horizon] = contracts.HorizonScore{
				Score:   contracts.NeutralScore,
				Rating:  contracts.RatingForScore(contracts.NeutralScore),
				Trained: false,
			}
			continue
		}
		horizons[horizon] = contracts.HorizonScore{
			Score:   *predicted,
			Rating:  contracts.RatingForScore(*predicted),
			Trained: true,
		}
	}

	score := &contracts.Score{
		Ticker:      ticker,
		Horizons:    horizons,
		Features:    vector,
		Explanation: Explain(vector),
		Sources:     sources,
		ComputedAt:  s.clock(),
	}

	s.cache.put(ticker, score)
	s.sharedPut(ctx, ticker, score)
	return score
}

// technicalFeatures computes the engineered features from bar history,
// deriving the serving-level price_to_ma ratios from the trained
// ma-ratio form. Any failure or short history yields the documented
// technical defaults.
func (s *Service) technicalFeatures(ctx context.Context, ticker string, sources map[string]contracts.DataStatus) contracts.FeatureVector {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	now := s.clock()
	bars, err := s.bars.GetBars(callCtx, ticker, now.AddDate(0, 0, -barLookbackDays), now)
	if err != nil {
		s.log.Warn().Str("ticker", ticker).Err(err).Msg("bar provider failed, using technical defaults")
		sources["technical"] = contracts.DataStatusDefault
		return technicalDefaults()
	}

	v := features.Compute(bars)
	if len(v) == 0 {
		s.log.Debug().Str("ticker", ticker).Int("bars", len(bars)).Msg("insufficient bar history, using technical defaults")
		sources["technical"] = contracts.DataStatusDefault
		return technicalDefaults()
	}

	v["price_to_ma50"] = v["ma50_ratio"] + 1
	v["price_to_ma200"] = v["ma200_ratio"] + 1
	sources["technical"] = contracts.DataStatusOK
	return v
}

// fundamentalFeatures fetches and coerces fundamentals, defaulting per
// field or wholesale on provider failure
func (s *Service) fundamentalFeatures(ctx context.Context, ticker string, sources map[string]contracts.DataStatus) contracts.FeatureVector {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	rec, err := s.fundamentals.GetFundamentals(callCtx, ticker)
	if err != nil || rec == nil {
		if err != nil {
			s.log.Warn().Str("ticker", ticker).Err(err).Msg("fundamental provider failed, using defaults")
		}
		sources["fundamental"] = contracts.DataStatusDefault
		return fundamentalDefaults()
	}

	sources["fundamental"] = contracts.DataStatusOK
	return fundamentalFeatures(rec)
}

// sentimentScore averages recent article ratings, neutral on failure
// or silence
func (s *Service) sentimentScore(ctx context.Context, ticker string, sources map[string]contracts.DataStatus) float64 {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	since := s.clock().AddDate(0, 0, -sentimentWindowDays)
	articles, err := s.sentiment.GetRecentArticles(callCtx, ticker, since)
	if err != nil {
		s.log.Warn().Str("ticker", ticker).Err(err).Msg("sentiment provider failed, using neutral")
		sources["sentiment"] = contracts.DataStatusDefault
		return neutralSentiment
	}

	if len(articles) == 0 {
		sources["sentiment"] = contracts.DataStatusDefault
		return neutralSentiment
	}

	sources["sentiment"] = contracts.DataStatusOK
	return sentimentFeature(articles)
}

// sharedGet reads the redis score cache, tolerating its absence
func (s *Service) sharedGet(ctx context.Context, ticker string) *contracts.Score {
	if s.sharedCache == nil {
		return nil
	}

	var score contracts.Score
	found, err := s.sharedCache.Get(ctx, redis.ScoreKey(ticker), &score)
	if err != nil || !found {
		return nil
	}
	return &score
}

// sharedPut writes through to the redis score cache, best effort
func (s *Service) sharedPut(ctx context.Context, ticker string, score *contracts.Score) {
	if s.sharedCache == nil {
		return
	}
	if err := s.sharedCache.Set(ctx, redis.ScoreKey(ticker), score, s.ttl); err != nil {
		s.log.Debug().Str("ticker", ticker).Err(err).Msg("shared cache write failed")
	}
}
