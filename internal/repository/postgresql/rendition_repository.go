package postgresql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"media-job-service/internal/entity"
)

type RenditionRepository struct {
	pool *pgxpool.Pool
}

func NewRenditionRepository(pool *pgxpool.Pool) *RenditionRepository {
	return &RenditionRepository{pool: pool}
}

func (r *RenditionRepository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]entity.Rendition, error) {
	const q = `
SELECT id, asset_id, resolution, url, thumbnail_url, duration, created_at, updated_at
FROM renditions
WHERE asset_id = $1
ORDER BY created_at;
`
	rows, err := r.pool.Query(ctx, q, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Rendition
	for rows.Next() {
		var (
			rd         entity.Rendition
			resolution string
		)
		if err := rows.Scan(&rd.ID, &rd.AssetID, &resolution, &rd.URL, &rd.ThumbnailURL,
			&rd.Duration, &rd.CreatedAt, &rd.UpdatedAt); err != nil {
			return nil, err
		}
		rd.Resolution = entity.Tier(resolution)
		out = append(out, rd)
	}
	return out, rows.Err()
}

// Upsert keeps at most one rendition per (asset, tier); a re-encode replaces
// the url and mirrored fields.
func (r *RenditionRepository) Upsert(ctx context.Context, rd *entity.Rendition) error {
	const q = `
INSERT INTO renditions (asset_id, resolution, url, thumbnail_url, duration)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (asset_id, resolution) DO UPDATE
SET url = EXCLUDED.url,
    thumbnail_url = EXCLUDED.thumbnail_url,
    duration = EXCLUDED.duration,
    updated_at = now()
RETURNING id, created_at, updated_at;
`
	return r.pool.QueryRow(ctx, q, rd.AssetID, string(rd.Resolution), rd.URL, rd.ThumbnailURL, rd.Duration).
		Scan(&rd.ID, &rd.CreatedAt, &rd.UpdatedAt)
}
