package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphapulse/pulse/internal/contracts"
)

// ErrNotFound reports a lookup for a row that does not exist.
var ErrNotFound = errors.New("not found")

// AssetRepository implements contracts.AssetRepository on Postgres.
type AssetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository creates a new asset repository.
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepository {
	return &AssetRepository{pool: pool}
}

// Upsert inserts or updates an asset by ticker and returns its id.
func (r *AssetRepository) Upsert(ctx context.Context, asset contracts.Asset) (int64, error) {
	query := `
		INSERT INTO assets (ticker, name, asset_class, exchange)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			asset_class = EXCLUDED.asset_class,
			exchange = EXCLUDED.exchange
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		asset.Ticker, asset.Name, string(asset.Class), asset.Exchange,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert asset %s: %w", asset.Ticker, err)
	}
	return id, nil
}

// GetByTicker retrieves one asset, ErrNotFound when absent.
func (r *AssetRepository) GetByTicker(ctx context.Context, ticker string) (*contracts.Asset, error) {
	query := `
		SELECT ticker, name, asset_class, exchange
		FROM assets
		WHERE ticker = $1
	`

	var a contracts.Asset
	err := r.pool.QueryRow(ctx, query, ticker).Scan(&a.Ticker, &a.Name, &a.Class, &a.Exchange)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get asset %s: %w", ticker, err)
	}
	return &a, nil
}

// List returns every tracked asset ordered by ticker.
func (r *AssetRepository) List(ctx context.Context) ([]contracts.Asset, error) {
	query := `
		SELECT ticker, name, asset_class, exchange
		FROM assets
		ORDER BY ticker ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []contracts.Asset
	for rows.Next() {
		var a contracts.Asset
		if err := rows.Scan(&a.Ticker, &a.Name, &a.Class, &a.Exchange); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
