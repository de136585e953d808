package postgresql

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"media-job-service/internal/entity"
)

type AssetRepository struct {
	pool *pgxpool.Pool
}

func NewAssetRepository(pool *pgxpool.Pool) *AssetRepository {
	return &AssetRepository{pool: pool}
}

const assetColumns = `id, url, resolution, duration, thumbnail_url, updated_at`

func scanAsset(row pgx.Row) (*entity.Asset, error) {
	var (
		a          entity.Asset
		resolution string
	)
	if err := row.Scan(&a.ID, &a.URL, &resolution, &a.Duration, &a.ThumbnailURL, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Resolution = entity.Tier(resolution)
	return &a, nil
}

func (r *AssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Asset, error) {
	q := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1;`
	a, err := scanAsset(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListWithoutThumbnail returns the oldest assets lacking a thumbnail.
func (r *AssetRepository) ListWithoutThumbnail(ctx context.Context, limit int) ([]entity.Asset, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + assetColumns + `
FROM assets
WHERE thumbnail_url IS NULL
ORDER BY created_at, id
LIMIT $1;`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AssetRepository) SetThumbnail(ctx context.Context, id uuid.UUID, url string) error {
	const q = `UPDATE assets SET thumbnail_url=$2, updated_at=now() WHERE id=$1;`
	return execOne(ctx, r.pool, q, id, url)
}
