package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphapulse/pulse/internal/contracts"
)

// BarRepository implements contracts.BarRepository on Postgres.
type BarRepository struct {
	pool *pgxpool.Pool
}

// NewBarRepository creates a new OHLCV repository.
func NewBarRepository(pool *pgxpool.Pool) *BarRepository {
	return &BarRepository{pool: pool}
}

// SaveBatch upserts a series of bars for a ticker in one round trip.
func (r *BarRepository) SaveBatch(ctx context.Context, ticker string, bars contracts.Series) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO ohlcv_data (asset_id, timestamp, open, high, low, close, volume)
		SELECT id, $2, $3, $4, $5, $6, $7 FROM assets WHERE ticker = $1
		ON CONFLICT (asset_id, timestamp) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`

	batch := &pgx.Batch{}
	for _, bar := range bars {
		batch.Queue(query, ticker, bar.Timestamp, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range bars {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save bars for %s: %w", ticker, err)
		}
	}
	return nil
}

// GetRange returns the bars for a ticker between from and to, oldest
// first.
func (r *BarRepository) GetRange(ctx context.Context, ticker string, from, to time.Time) (contracts.Series, error) {
	query := `
		SELECT b.timestamp, b.open, b.high, b.low, b.close, b.volume
		FROM ohlcv_data b
		JOIN assets a ON a.id = b.asset_id
		WHERE a.ticker = $1 AND b.timestamp BETWEEN $2 AND $3
		ORDER BY b.timestamp ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("get bars for %s: %w", ticker, err)
	}
	defer rows.Close()

	var series contracts.Series
	for rows.Next() {
		var bar contracts.Bar
		if err := rows.Scan(&bar.Timestamp, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, err
		}
		series = append(series, bar)
	}
	return series, rows.Err()
}
