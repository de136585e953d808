package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"media-job-service/internal/entity"
)

// JobRepository is the worker-side store (postgresql.JobRepository).
type JobRepository interface {
	Create(ctx context.Context, assetID uuid.UUID, priority int, input json.RawMessage) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.RenditionJob, error)
}

// JobQueue is the enqueue half of Queue.
type JobQueue interface {
	Enqueue(ctx context.Context, jobID string, priority int) error
}

// JobService accepts dispatched rendition work on the worker side.
type JobService struct {
	repo  JobRepository
	queue JobQueue
}

func NewJobService(repo JobRepository, queue JobQueue) *JobService {
	return &JobService{repo: repo, queue: queue}
}

// ValidateDispatch checks a DispatchRequest as received over the wire.
func ValidateDispatch(req entity.DispatchRequest) error {
	if req.AssetID == uuid.Nil {
		return fmt.Errorf("%w: assetId is required", entity.ErrInvalidInput)
	}
	if req.SourceURL == "" {
		return fmt.Errorf("%w: sourceUrl is required", entity.ErrInvalidInput)
	}
	if !req.SourceResolution.Valid() {
		return fmt.Errorf("%w: unknown sourceResolution %q", entity.ErrInvalidInput, req.SourceResolution)
	}
	if len(req.TargetResolutions) == 0 {
		return fmt.Errorf("%w: targetResolutions is empty", entity.ErrInvalidInput)
	}
	for _, t := range req.TargetResolutions {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown target resolution %q", entity.ErrInvalidInput, t)
		}
	}
	if req.Duration < 0 {
		return fmt.Errorf("%w: negative duration", entity.ErrInvalidInput)
	}
	return nil
}

// CreateJob stores the request as a pending job and enqueues it. It returns
// as soon as the id is queued.
func (s *JobService) CreateJob(ctx context.Context, req entity.DispatchRequest, priority int) (uuid.UUID, error) {
	if err := ValidateDispatch(req); err != nil {
		return uuid.Nil, err
	}
	if priority < PriorityLow || priority > PriorityHigh {
		priority = PriorityNormal
	}

	input, err := json.Marshal(req)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := s.repo.Create(ctx, req.AssetID, priority, input)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create rendition job: %w", err)
	}
	if err := s.queue.Enqueue(ctx, id.String(), priority); err != nil {
		return uuid.Nil, fmt.Errorf("enqueue rendition job: %w", err)
	}
	return id, nil
}

func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*entity.RenditionJob, error) {
	return s.repo.GetByID(ctx, id)
}
