package postgresql

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"media-job-service/internal/entity"
)

type AgentJobRepository struct {
	pool dbtx
}

func NewAgentJobRepository(pool *pgxpool.Pool) *AgentJobRepository {
	return &AgentJobRepository{pool: pool}
}

const agentJobColumns = `id, user_id, status, payload, result, created_at, updated_at`

func scanAgentJob(row pgx.Row) (*entity.AgentJob, error) {
	var (
		j           entity.AgentJob
		statusText  string
		payload     []byte
		resultBytes []byte
	)
	if err := row.Scan(&j.ID, &j.UserID, &statusText, &payload, &resultBytes, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.Status = entity.AgentJobStatus(statusText)
	j.Payload = json.RawMessage(payload)
	if resultBytes != nil {
		j.Result = json.RawMessage(resultBytes)
	}
	return &j, nil
}

// GetForOwner only matches a job that belongs to ownerID, so a foreign job is
// indistinguishable from a missing one.
func (r *AgentJobRepository) GetForOwner(ctx context.Context, id uuid.UUID, ownerID string) (*entity.AgentJob, error) {
	q := `SELECT ` + agentJobColumns + ` FROM agent_jobs WHERE id = $1 AND user_id = $2;`
	j, err := scanAgentJob(r.pool.QueryRow(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return j, nil
}

// DeleteQueuedForOwner removes the job only while it is still queued. When
// nothing was deleted the current status is read back to tell a missing job
// (ErrNotFound) from one that already left the queued state (ErrInvalidState).
func (r *AgentJobRepository) DeleteQueuedForOwner(ctx context.Context, id uuid.UUID, ownerID string) error {
	const q = `DELETE FROM agent_jobs WHERE id = $1 AND user_id = $2 AND status = 'queued';`
	tag, err := r.pool.Exec(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var status string
	err = r.pool.QueryRow(ctx, `SELECT status FROM agent_jobs WHERE id = $1 AND user_id = $2;`, id, ownerID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.ErrNotFound
		}
		return err
	}
	return entity.ErrInvalidState
}

func (r *AgentJobRepository) ListForOwner(ctx context.Context, ownerID string, status entity.AgentJobStatus, limit int) ([]entity.AgentJob, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	q := `SELECT ` + agentJobColumns + `
FROM agent_jobs
WHERE user_id = $1 AND ($2::text = '' OR status = $2::text)
ORDER BY created_at DESC
LIMIT $3;`

	rows, err := r.pool.Query(ctx, q, ownerID, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.AgentJob
	for rows.Next() {
		j, err := scanAgentJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}
