package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphapulse/pulse/internal/contracts"
)

// ScoreRepository implements contracts.ScoreRepository on Postgres.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new scoring result repository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// Save persists one scoring result.
func (r *ScoreRepository) Save(ctx context.Context, result *contracts.Result) error {
	query := `
		INSERT INTO scoring_results (
			asset_id, timestamp,
			trend_score, volatility_score, sentiment_score, fundamental_score,
			relative_strength_score, insider_funds_score, macro_score,
			ai_score, signal, explanation
		)
		SELECT id, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		FROM assets WHERE ticker = $1
		ON CONFLICT (asset_id, timestamp) DO UPDATE SET
			trend_score = EXCLUDED.trend_score,
			volatility_score = EXCLUDED.volatility_score,
			sentiment_score = EXCLUDED.sentiment_score,
			fundamental_score = EXCLUDED.fundamental_score,
			relative_strength_score = EXCLUDED.relative_strength_score,
			insider_funds_score = EXCLUDED.insider_funds_score,
			macro_score = EXCLUDED.macro_score,
			ai_score = EXCLUDED.ai_score,
			signal = EXCLUDED.signal,
			explanation = EXCLUDED.explanation
	`

	tag, err := r.pool.Exec(ctx, query,
		result.Asset.Ticker, result.Timestamp,
		result.FactorScore(contracts.FactorTrend),
		result.FactorScore(contracts.FactorVolatility),
		result.FactorScore(contracts.FactorSentiment),
		result.FactorScore(contracts.FactorFundamental),
		result.FactorScore(contracts.FactorRelativeStrength),
		result.FactorScore(contracts.FactorInsiderFunds),
		result.FactorScore(contracts.FactorMacro),
		result.AiScore, string(result.Signal), result.Explanation,
	)
	if err != nil {
		return fmt.Errorf("save score for %s: %w", result.Asset.Ticker, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save score: unknown ticker %s", result.Asset.Ticker)
	}
	return nil
}

const scoreColumns = `
	a.ticker, a.name, a.asset_class, a.exchange, s.timestamp,
	s.trend_score, s.volatility_score, s.sentiment_score, s.fundamental_score,
	s.relative_strength_score, s.insider_funds_score, s.macro_score,
	s.ai_score, s.signal, s.explanation
`

// LatestAll returns the most recent result per asset, one row each,
// ordered by asset.
func (r *ScoreRepository) LatestAll(ctx context.Context) ([]*contracts.Result, error) {
	query := `
		SELECT DISTINCT ON (s.asset_id)` + scoreColumns + `
		FROM scoring_results s
		JOIN assets a ON a.id = s.asset_id
		ORDER BY s.asset_id, s.timestamp DESC
	`

	results, err := r.queryResults(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("latest scores: %w", err)
	}
	return results, nil
}

// History returns results for one ticker over the last days, newest
// first.
func (r *ScoreRepository) History(ctx context.Context, ticker string, days int) ([]*contracts.Result, error) {
	query := `
		SELECT` + scoreColumns + `
		FROM scoring_results s
		JOIN assets a ON a.id = s.asset_id
		WHERE a.ticker = $1 AND s.timestamp >= $2
		ORDER BY s.timestamp DESC
	`

	since := time.Now().UTC().AddDate(0, 0, -days)
	results, err := r.queryResults(ctx, query, ticker, since)
	if err != nil {
		return nil, fmt.Errorf("score history for %s: %w", ticker, err)
	}
	return results, nil
}

func (r *ScoreRepository) queryResults(ctx context.Context, query string, args ...interface{}) ([]*contracts.Result, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*contracts.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func scanResult(row pgx.Row) (*contracts.Result, error) {
	var res contracts.Result
	var trend, vol, sent, fund, rel, ins, macro float64

	err := row.Scan(
		&res.Asset.Ticker, &res.Asset.Name, &res.Asset.Class, &res.Asset.Exchange,
		&res.Timestamp,
		&trend, &vol, &sent, &fund, &rel, &ins, &macro,
		&res.AiScore, &res.Signal, &res.Explanation,
	)
	if err != nil {
		return nil, err
	}

	res.FactorScores = map[contracts.Factor]float64{
		contracts.FactorTrend:            trend,
		contracts.FactorVolatility:       vol,
		contracts.FactorSentiment:        sent,
		contracts.FactorFundamental:      fund,
		contracts.FactorRelativeStrength: rel,
		contracts.FactorInsiderFunds:     ins,
		contracts.FactorMacro:            macro,
	}
	return &res, nil
}
