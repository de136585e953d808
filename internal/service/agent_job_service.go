package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"media-job-service/internal/entity"
	"media-job-service/internal/metrics"
)

// AgentJobStore is implemented by postgresql.AgentJobRepository. Every
// lookup is scoped to the owner.
type AgentJobStore interface {
	GetForOwner(ctx context.Context, id uuid.UUID, ownerID string) (*entity.AgentJob, error)
	// DeleteQueuedForOwner deletes in one conditional statement and returns
	// ErrNotFound or ErrInvalidState when nothing matched.
	DeleteQueuedForOwner(ctx context.Context, id uuid.UUID, ownerID string) error
	ListForOwner(ctx context.Context, ownerID string, status entity.AgentJobStatus, limit int) ([]entity.AgentJob, error)
}

type AgentJobService struct {
	repo    AgentJobStore
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewAgentJobService(repo AgentJobStore, log zerolog.Logger, m *metrics.Metrics) *AgentJobService {
	return &AgentJobService{repo: repo, log: log, metrics: m}
}

func (s *AgentJobService) Get(ctx context.Context, id uuid.UUID, ownerID string) (*entity.AgentJob, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, entity.ErrNotFound
	}
	return s.repo.GetForOwner(ctx, id, ownerID)
}

// Cancel deletes a queued job. Jobs past queued are never touched.
func (s *AgentJobService) Cancel(ctx context.Context, id uuid.UUID, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return entity.ErrNotFound
	}

	err := s.repo.DeleteQueuedForOwner(ctx, id, ownerID)
	switch {
	case err == nil:
		s.metrics.AgentJobCancel("deleted")
		s.log.Info().Str("job_id", id.String()).Str("user_id", ownerID).Msg("agent job cancelled")
		return nil
	case errors.Is(err, entity.ErrNotFound):
		s.metrics.AgentJobCancel("not_found")
		return err
	case errors.Is(err, entity.ErrInvalidState):
		s.metrics.AgentJobCancel("invalid_state")
		return fmt.Errorf("%w: only queued jobs can be cancelled", err)
	default:
		s.metrics.AgentJobCancel("error")
		return fmt.Errorf("cancel agent job: %w", err)
	}
}

func (s *AgentJobService) List(ctx context.Context, ownerID string, status entity.AgentJobStatus, limit int) ([]entity.AgentJob, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, entity.ErrNotFound
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidInput, status)
	}
	return s.repo.ListForOwner(ctx, ownerID, status, limit)
}
