package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/quantlab-io/scorecast/internal/contracts"
	"github.com/quantlab-io/scorecast/pkg/database"
)

// Repository persists computed scores and tracks refresh staleness
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// SaveScore upserts the full score payload for a ticker
func (r *Repository) SaveScore(ctx context.Context, score *contracts.Score) error {
	payload, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("marshal score for %s: %w", score.Ticker, err)
	}

	query := `
		INSERT INTO scores (ticker, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Pool.Exec(ctx, query, score.Ticker, payload, score.ComputedAt); err != nil {
		return fmt.Errorf("save score for %s: %w", score.Ticker, err)
	}
	return nil
}

// GetScore loads the persisted score for a ticker, nil when absent
func (r *Repository) GetScore(ctx context.Context, ticker string) (*contracts.Score, error) {
	query := `SELECT payload FROM scores WHERE ticker = $1`

	var payload []byte
	row := r.db.Pool.QueryRow(ctx, query, ticker)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load score for %s: %w", ticker, err)
	}

	var score contracts.Score
	if err := json.Unmarshal(payload, &score); err != nil {
		return nil, fmt.Errorf("decode score for %s: %w", ticker, err)
	}
	return &score, nil
}

// StaleTickers returns up to limit tickers ordered oldest refresh
// first, so the refresher always spends its quota where it matters
func (r *Repository) StaleTickers(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT ticker FROM scores
		ORDER BY updated_at ASC
		LIMIT $1
	`
	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// ListTickers returns every tracked ticker, used as the training
// universe
func (r *Repository) ListTickers(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT ticker FROM scores ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// AddTicker registers a ticker for tracking with an epoch refresh time
// so the next refresh cycle picks it up first
func (r *Repository) AddTicker(ctx context.Context, ticker string) error {
	query := `
		INSERT INTO scores (ticker, payload, updated_at)
		VALUES ($1, '{}', $2)
		ON CONFLICT (ticker) DO NOTHING
	`
	if _, err := r.db.Pool.Exec(ctx, query, ticker, time.Unix(0, 0).UTC()); err != nil {
		return fmt.Errorf("add ticker %s: %w", ticker, err)
	}
	return nil
}
