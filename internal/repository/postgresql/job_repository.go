package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"media-job-service/internal/entity"
)

// JobRepository stores the rendition worker's jobs.
type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, assetID uuid.UUID, priority int, input json.RawMessage) (uuid.UUID, error) {
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}

	const q = `
INSERT INTO rendition_jobs (asset_id, status, priority, input)
VALUES ($1, 'pending', $2, $3)
RETURNING id;
`
	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, q, assetID, priority, input).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.RenditionJob, error) {
	const q = `
SELECT id, asset_id, status, priority, input, output, error, created_at, updated_at
FROM rendition_jobs
WHERE id = $1;
`
	var (
		job         entity.RenditionJob
		statusText  string
		inputBytes  []byte
		outputBytes []byte
	)
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&job.ID,
		&job.AssetID,
		&statusText,
		&job.Priority,
		&inputBytes,
		&outputBytes,
		&job.Error,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}

	job.Status = entity.JobStatus(statusText)
	job.Input = json.RawMessage(inputBytes)
	if outputBytes != nil {
		job.Output = json.RawMessage(outputBytes)
	}
	return &job, nil
}

// Claim moves a pending job to processing. A job already processing is taken
// over only when reclaimAfter > 0 and it was claimed longer ago than that.
// false means another worker owns the job, it is finished, or it does not exist.
func (r *JobRepository) Claim(ctx context.Context, id uuid.UUID, reclaimAfter time.Duration) (bool, error) {
	const q = `
UPDATE rendition_jobs SET status='processing', updated_at=now()
WHERE id=$1
  AND (status='pending'
       OR ($2::float8 > 0
           AND status='processing'
           AND updated_at < now() - make_interval(secs => $2::float8)));
`
	tag, err := r.pool.Exec(ctx, q, id, reclaimAfter.Seconds())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *JobRepository) SetResultDone(ctx context.Context, id uuid.UUID, output json.RawMessage) error {
	if len(output) == 0 {
		output = json.RawMessage(`{}`)
	}
	const q = `UPDATE rendition_jobs SET status='done', output=$2, error=NULL, updated_at=now() WHERE id=$1;`
	return execOne(ctx, r.pool, q, id, output)
}

// SetResultError keeps the partial per-tier output next to the error text.
func (r *JobRepository) SetResultError(ctx context.Context, id uuid.UUID, errText string, output json.RawMessage) error {
	const q = `UPDATE rendition_jobs SET status='error', error=$2, output=$3, updated_at=now() WHERE id=$1;`
	var out any
	if len(output) > 0 {
		out = output
	}
	return execOne(ctx, r.pool, q, id, errText, out)
}

// execOne runs a single-row statement; zero affected rows means not found.
func execOne(ctx context.Context, pool *pgxpool.Pool, q string, args ...any) error {
	tag, err := pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}
