package commands

import (
	"fmt"

	"github.com/quantlab-io/scorecast/internal/artifact"
	"github.com/quantlab-io/scorecast/internal/providers"
	"github.com/quantlab-io/scorecast/internal/scorer"
	"github.com/quantlab-io/scorecast/internal/scoring"
	"github.com/quantlab-io/scorecast/pkg/config"
	"github.com/quantlab-io/scorecast/pkg/database"
	"github.com/quantlab-io/scorecast/pkg/httputil"
	"github.com/quantlab-io/scorecast/pkg/logger"
	"github.com/quantlab-io/scorecast/pkg/ratelimit"
	"github.com/quantlab-io/scorecast/pkg/redis"
)

// app bundles the shared components a command may need. Construction
// is lazy for the heavyweight pieces: the database and redis connect
// only when a command asks for them.
type app struct {
	cfg *config.Config
	log *logger.Logger

	store  *artifact.Store
	scorer *scorer.Scorer

	bars         *providers.BarsClient
	fundamentals *providers.FundamentalsClient
	sentiment    *providers.SentimentClient

	db    *database.DB
	cache *redis.Client
}

// newApp builds config, logging, the artifact store, the scorer and
// the provider clients. Production models load here so every command
// sees the same serving state.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	store, err := artifact.NewStore(cfg.Artifacts.Dir)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}

	sc := scorer.New(store, log.Zerolog())
	sc.Reload()

	httpClient := httputil.New(log, cfg.Providers.CallTimeout)

	return &app{
		cfg:          cfg,
		log:          log,
		store:        store,
		scorer:       sc,
		bars:         providers.NewBarsClient(httpClient, cfg.Providers.BarsBaseURL, cfg.Providers.BarsAPIKey),
		fundamentals: providers.NewFundamentalsClient(httpClient, cfg.Providers.FundamentalsBaseURL, cfg.Providers.FundamentalsAPIKey),
		sentiment:    providers.NewSentimentClient(httpClient, cfg.Providers.SentimentBaseURL, cfg.Providers.SentimentAPIKey),
	}, nil
}

// close releases any lazily opened connections
func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

// database opens the postgres pool on first use
func (a *app) database() (*database.DB, error) {
	if a.db == nil {
		db, err := database.New(a.cfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.db = db
	}
	return a.db, nil
}

// repository returns the score repository backed by postgres
func (a *app) repository() (*scoring.Repository, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}
	return scoring.NewRepository(db), nil
}

// redisCache connects redis on first use, degrading to disabled when
// the connection fails
func (a *app) redisCache() *redis.Cache {
	if a.cache == nil {
		client, err := redis.New(a.cfg)
		if err != nil {
			a.log.WithError(err).Warn("redis unavailable, shared cache disabled")
			client = redis.Disabled()
		}
		a.cache = client
	}
	if !a.cache.Enabled() {
		return nil
	}
	return redis.NewCache(a.cache, "scorecast")
}

// service builds the scoring service over the provider clients
func (a *app) service() *scoring.Service {
	return scoring.NewService(a.bars, a.fundamentals, a.sentiment, a.scorer, scoring.Options{
		ScoreTTL:    a.cfg.Refresh.ScoreTTL,
		CallTimeout: a.cfg.Providers.CallTimeout,
		SharedCache: a.redisCache(),
	}, a.log.Zerolog())
}

// refresher builds the batch refresher with the configured quota and
// provider pacing
func (a *app) refresher() (*scoring.Refresher, error) {
	repo, err := a.repository()
	if err != nil {
		return nil, err
	}
	pacer := ratelimit.NewTokenBucket(a.cfg.Refresh.RatePerSec)
	return scoring.NewRefresher(a.service(), repo, pacer, a.cfg.Refresh.Quota, a.log.Zerolog()), nil
}
