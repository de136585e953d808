package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"media-job-service/internal/encoder"
	"media-job-service/internal/entity"
	"media-job-service/internal/metrics"
	"media-job-service/internal/rendition"
	"media-job-service/internal/service"
	"media-job-service/internal/storage"
)

type JobRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.RenditionJob, error)
	Claim(ctx context.Context, id uuid.UUID, reclaimAfter time.Duration) (bool, error)
	SetResultDone(ctx context.Context, id uuid.UUID, output json.RawMessage) error
	SetResultError(ctx context.Context, id uuid.UUID, errText string, output json.RawMessage) error
}

// RenditionRepo is implemented by postgresql.RenditionRepository.
type RenditionRepo interface {
	ListByAsset(ctx context.Context, assetID uuid.UUID) ([]entity.Rendition, error)
	Upsert(ctx context.Context, rd *entity.Rendition) error
}

type AssetRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Asset, error)
}

// Deps wires a Processor. ReclaimAfter lets a job stuck in processing be
// taken over once it has been held that long; zero never takes one over.
type Deps struct {
	Jobs         JobRepo
	Renditions   RenditionRepo
	Assets       AssetRepo
	Encoder      encoder.Encoder
	Store        storage.ObjectStore
	Ladder       rendition.Ladder
	Timeout      time.Duration
	ReclaimAfter time.Duration
	Log          zerolog.Logger
	Metrics      *metrics.Metrics
}

// ErrRetry marks a failure that left the job row without a final status. The
// pool does not ack such ids, so the reaper hands them out again after the
// visibility timeout and Claim lets the next worker take the job over.
var ErrRetry = errors.New("job not finished, retry later")

// Processor encodes every missing tier of one rendition job.
type Processor struct {
	Deps
}

func NewProcessor(d Deps) *Processor {
	if d.Ladder == nil {
		d.Ladder = rendition.DefaultLadder()
	}
	return &Processor{Deps: d}
}

// Output is stored on the job row.
type Output struct {
	AssetID uuid.UUID           `json:"assetId"`
	Skipped []entity.Tier       `json:"skipped,omitempty"`
	Report  service.BatchReport `json:"report"`
}

func (p *Processor) Process(ctx context.Context, jobID string) error {
	start := time.Now()

	id, err := uuid.Parse(jobID)
	if err != nil {
		return fmt.Errorf("parse job id %q: %w", jobID, err)
	}
	l := p.Log.With().Str("job_id", jobID).Logger()

	claimed, err := p.Jobs.Claim(ctx, id, p.ReclaimAfter)
	if err != nil {
		return fmt.Errorf("claim job: %w: %w", ErrRetry, err)
	}
	if !claimed {
		l.Info().Msg("rendition job owned elsewhere or finished, skipping")
		return nil
	}

	job, err := p.Jobs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load job: %w: %w", ErrRetry, err)
	}
	req, err := job.Request()
	if err != nil {
		p.finishError(ctx, id, "invalid job input: "+err.Error(), nil)
		return err
	}
	l = l.With().Str("asset_id", req.AssetID.String()).Logger()

	existing, err := p.Renditions.ListByAsset(ctx, req.AssetID)
	if err != nil {
		p.finishError(ctx, id, "list renditions: "+err.Error(), nil)
		return err
	}
	have := rendition.TierSet(existing)
	targets := rendition.Narrow(req.TargetResolutions, have)

	out := Output{AssetID: req.AssetID}
	for _, t := range req.TargetResolutions {
		if have[t] {
			out.Skipped = append(out.Skipped, t)
		}
	}

	var thumb *string
	if a, err := p.Assets.GetByID(ctx, req.AssetID); err == nil {
		thumb = a.ThumbnailURL
	} else {
		l.Warn().Err(err).Msg("asset lookup failed, renditions stored without thumbnail")
	}

	l.Info().Interface("targets", targets).Msg("rendition job processing")

	c := service.NewBatchCollector(len(targets))
	for i, tier := range targets {
		url, stage, err := p.renderTier(ctx, req, tier, thumb)
		if err != nil {
			c.Fail(i, req.AssetID, string(tier), stage, err)
			l.Warn().Err(err).Str("tier", string(tier)).Str("stage", stage).Msg("tier failed")
			continue
		}
		c.Succeed(i, req.AssetID, string(tier), url)
	}
	out.Report = c.Report()

	raw, _ := json.Marshal(out)
	if out.Report.Failed > 0 {
		msg := failureSummary(out.Report)
		p.finishError(ctx, id, msg, raw)
		l.Error().Int64("duration_ms", time.Since(start).Milliseconds()).Str("error", msg).Msg("rendition job failed")
		return fmt.Errorf("rendition job %s: %s", jobID, msg)
	}

	if err := p.Jobs.SetResultDone(ctx, id, raw); err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	p.Metrics.WorkerJob(string(entity.StatusDone))
	l.Info().Int64("duration_ms", time.Since(start).Milliseconds()).Int("rendered", out.Report.Succeeded).Msg("rendition job done")
	return nil
}

func (p *Processor) renderTier(ctx context.Context, req entity.DispatchRequest, tier entity.Tier, thumb *string) (string, string, error) {
	spec, ok := p.Ladder.Spec(tier)
	if !ok {
		return "", "ladder", fmt.Errorf("%w: tier %q not in ladder", entity.ErrInvalidInput, tier)
	}

	start := time.Now()
	art, err := encoder.Run(ctx, p.Encoder, encoder.Request{
		Source:  req.SourceURL,
		Target:  encoder.RenditionTarget(spec.Width, spec.Height),
		Timeout: p.Timeout,
	})
	p.Metrics.ObserveEncode(string(encoder.KindRendition), outcome(err), time.Since(start))
	if err != nil {
		return "", "encode", err
	}

	key := storage.RenditionKey(req.AssetID, tier, art.Ext)
	url, err := p.Store.Upload(ctx, key, art.Data, art.ContentType)
	if err != nil {
		return "", "upload", err
	}

	rd := &entity.Rendition{
		AssetID:      req.AssetID,
		Resolution:   tier,
		URL:          url,
		ThumbnailURL: thumb,
		Duration:     req.Duration,
	}
	if err := p.Renditions.Upsert(ctx, rd); err != nil {
		// The tier was missing, so no row points at this object.
		if delErr := p.Store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			p.Log.Warn().Err(delErr).Str("key", key).Msg("remove orphaned rendition")
		}
		return "", "update", err
	}
	return url, "", nil
}

func (p *Processor) finishError(ctx context.Context, id uuid.UUID, msg string, output json.RawMessage) {
	if err := p.Jobs.SetResultError(ctx, id, msg, output); err != nil {
		p.Log.Error().Err(err).Str("job_id", id.String()).Msg("mark error")
	}
	p.Metrics.WorkerJob(string(entity.StatusError))
}

func failureSummary(rep service.BatchReport) string {
	var parts []string
	for _, r := range rep.Results {
		if !r.Succeeded {
			parts = append(parts, fmt.Sprintf("%s: %s", r.Label, r.Error))
		}
	}
	return strings.Join(parts, "; ")
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case entity.IsTimeout(err):
		return string(entity.EncodeTimeout)
	default:
		return string(entity.EncodeEncoderFailed)
	}
}
