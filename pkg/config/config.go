package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	Env string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External data providers
	Providers ProvidersConfig

	// Model artifacts
	Artifacts ArtifactsConfig

	// Batch score refresh
	Refresh RefreshConfig

	// Training
	Training TrainingConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ProvidersConfig holds upstream data provider configuration
type ProvidersConfig struct {
	BarsBaseURL         string
	BarsAPIKey          string
	FundamentalsBaseURL string
	FundamentalsAPIKey  string
	SentimentBaseURL    string
	SentimentAPIKey     string

	// Per-call timeout applied in the serving path. A timed-out call is
	// treated as a provider failure, never as a fatal error.
	CallTimeout time.Duration
}

// ArtifactsConfig holds model artifact storage configuration
type ArtifactsConfig struct {
	Dir string
}

// RefreshConfig holds batch score refresh configuration
type RefreshConfig struct {
	Quota      int           // maximum tickers processed per run
	RatePerSec float64       // provider requests per second across the batch
	ScoreTTL   time.Duration // cache TTL for served scores
}

// TrainingConfig holds training pipeline configuration
type TrainingConfig struct {
	LookbackYears int   // calendar years of daily bars fetched per symbol
	Seed          int64 // seed for the stratified split and tree construction
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Providers: ProvidersConfig{
			BarsBaseURL:         getEnv("BARS_BASE_URL", "https://api.polygon.io"),
			BarsAPIKey:          getEnv("BARS_API_KEY", ""),
			FundamentalsBaseURL: getEnv("FUNDAMENTALS_BASE_URL", ""),
			FundamentalsAPIKey:  getEnv("FUNDAMENTALS_API_KEY", ""),
			SentimentBaseURL:    getEnv("SENTIMENT_BASE_URL", ""),
			SentimentAPIKey:     getEnv("SENTIMENT_API_KEY", ""),
			CallTimeout:         getEnvAsDuration("PROVIDER_CALL_TIMEOUT", "10s"),
		},

		Artifacts: ArtifactsConfig{
			Dir: getEnv("ARTIFACTS_DIR", "artifacts"),
		},

		Refresh: RefreshConfig{
			Quota:      getEnvAsInt("REFRESH_QUOTA", 50),
			RatePerSec: getEnvAsFloat("REFRESH_RATE_PER_SEC", 0.5),
			ScoreTTL:   getEnvAsDuration("SCORE_TTL", "15m"),
		},

		Training: TrainingConfig{
			LookbackYears: getEnvAsInt("TRAINING_LOOKBACK_YEARS", 3),
			Seed:          int64(getEnvAsInt("TRAINING_SEED", 42)),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Artifacts.Dir == "" {
		return fmt.Errorf("ARTIFACTS_DIR must not be empty")
	}

	if c.Refresh.Quota <= 0 {
		return fmt.Errorf("REFRESH_QUOTA must be positive")
	}

	if c.Refresh.RatePerSec <= 0 {
		return fmt.Errorf("REFRESH_RATE_PER_SEC must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
