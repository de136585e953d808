package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"media-job-service/internal/entity"
	"media-job-service/internal/metrics"
	"media-job-service/internal/rendition"
)

// RenditionStore is the read side of postgresql.RenditionRepository.
type RenditionStore interface {
	ListByAsset(ctx context.Context, assetID uuid.UUID) ([]entity.Rendition, error)
}

// WorkerClient enqueues rendition work on the remote worker and returns its
// job id. Failures must be *entity.DispatchError.
type WorkerClient interface {
	GenerateRenditions(ctx context.Context, requestID string, req entity.DispatchRequest) (string, error)
}

// DispatchAck acknowledges a dispatch. With NothingToDo set no call was made
// and JobID is empty.
type DispatchAck struct {
	AssetID     uuid.UUID     `json:"assetId"`
	JobID       string        `json:"jobId,omitempty"`
	RequestID   string        `json:"requestId,omitempty"`
	NothingToDo bool          `json:"nothingToDo"`
	Targets     []entity.Tier `json:"targets"`
}

// RenditionService decides which renditions are missing and hands them to
// the worker. It never waits for encoding to finish.
//
// Two concurrent reconciliations for one asset can both see the same
// missing tiers and dispatch twice; callers serialize per asset if needed.
type RenditionService struct {
	assets     AssetStore
	renditions RenditionStore
	worker     WorkerClient
	ladder     rendition.Ladder
	log        zerolog.Logger
	metrics    *metrics.Metrics
	newID      func() string
}

func NewRenditionService(assets AssetStore, renditions RenditionStore, worker WorkerClient, ladder rendition.Ladder, log zerolog.Logger, m *metrics.Metrics) *RenditionService {
	if ladder == nil {
		ladder = rendition.DefaultLadder()
	}
	return &RenditionService{
		assets:     assets,
		renditions: renditions,
		worker:     worker,
		ladder:     ladder,
		log:        log,
		metrics:    m,
		newID:      func() string { return uuid.NewString() },
	}
}

// Reconcile dispatches the full cascade for the asset's own tier.
func (s *RenditionService) Reconcile(ctx context.Context, assetID uuid.UUID) (DispatchAck, error) {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return DispatchAck{}, err
	}
	return s.Dispatch(ctx, asset, asset.Resolution, s.ladder.Cascade(asset.Resolution))
}

// Dispatch narrows targets against renditions that already exist, then makes
// at most one worker call.
func (s *RenditionService) Dispatch(ctx context.Context, asset *entity.Asset, sourceTier entity.Tier, targets []entity.Tier) (DispatchAck, error) {
	if asset == nil {
		return DispatchAck{}, fmt.Errorf("%w: asset is required", entity.ErrInvalidInput)
	}
	for _, t := range targets {
		if !t.Valid() {
			return DispatchAck{}, fmt.Errorf("%w: unknown tier %q", entity.ErrInvalidInput, t)
		}
	}
	l := s.log.With().Str("asset_id", asset.ID.String()).Str("source_tier", string(sourceTier)).Logger()

	existing, err := s.renditions.ListByAsset(ctx, asset.ID)
	if err != nil {
		return DispatchAck{}, fmt.Errorf("list renditions: %w", err)
	}
	missing := rendition.Narrow(targets, rendition.TierSet(existing))

	ack := DispatchAck{AssetID: asset.ID, Targets: missing}
	if len(missing) == 0 {
		ack.NothingToDo = true
		s.metrics.Dispatch("nothing_to_do")
		l.Debug().Msg("renditions up to date")
		return ack, nil
	}

	ack.RequestID = s.newID()
	jobID, err := s.worker.GenerateRenditions(ctx, ack.RequestID, entity.DispatchRequest{
		AssetID:           asset.ID,
		SourceURL:         asset.URL,
		SourceResolution:  sourceTier,
		TargetResolutions: missing,
		Duration:          asset.Duration,
	})
	if err != nil {
		s.metrics.Dispatch("error")
		var de *entity.DispatchError
		if !errors.As(err, &de) {
			err = &entity.DispatchError{Kind: entity.DispatchWorkerUnavailable, Diagnostic: err.Error(), Err: err}
		}
		l.Error().Err(err).Str("req_id", ack.RequestID).Msg("dispatch failed")
		return DispatchAck{}, err
	}

	ack.JobID = jobID
	s.metrics.Dispatch("accepted")
	l.Info().Str("job_id", jobID).Str("req_id", ack.RequestID).Interface("targets", missing).Msg("renditions dispatched")
	return ack, nil
}
