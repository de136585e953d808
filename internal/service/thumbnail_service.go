package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"media-job-service/internal/encoder"
	"media-job-service/internal/entity"
	"media-job-service/internal/metrics"
	"media-job-service/internal/storage"
)

// AssetStore is implemented by postgresql.AssetRepository.
type AssetStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Asset, error)
	ListWithoutThumbnail(ctx context.Context, limit int) ([]entity.Asset, error)
	SetThumbnail(ctx context.Context, id uuid.UUID, url string) error
}

type ThumbnailConfig struct {
	Offset  time.Duration
	Width   int
	Timeout time.Duration
}

func DefaultThumbnailConfig() ThumbnailConfig {
	return ThumbnailConfig{Offset: time.Second, Width: 480, Timeout: 30 * time.Second}
}

type ThumbnailOption func(*ThumbnailService)

// WithConcurrency bounds how many encodes run at once. n <= 1 is serial.
func WithConcurrency(n int) ThumbnailOption {
	return func(s *ThumbnailService) {
		if n < 1 {
			n = 1
		}
		s.concurrency = n
	}
}

func WithThumbnailLogger(l zerolog.Logger) ThumbnailOption {
	return func(s *ThumbnailService) { s.log = l }
}

func WithThumbnailMetrics(m *metrics.Metrics) ThumbnailOption {
	return func(s *ThumbnailService) { s.metrics = m }
}

// ThumbnailService generates missing thumbnails: encode, upload, then
// record the url on the asset.
type ThumbnailService struct {
	assets      AssetStore
	enc         encoder.Encoder
	store       storage.ObjectStore
	cfg         ThumbnailConfig
	concurrency int
	log         zerolog.Logger
	metrics     *metrics.Metrics
}

func NewThumbnailService(assets AssetStore, enc encoder.Encoder, store storage.ObjectStore, cfg ThumbnailConfig, opts ...ThumbnailOption) *ThumbnailService {
	s := &ThumbnailService{
		assets:      assets,
		enc:         enc,
		store:       store,
		cfg:         cfg,
		concurrency: 1,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backfill runs a batch over up to limit assets that have no thumbnail yet.
func (s *ThumbnailService) Backfill(ctx context.Context, limit int) (BatchReport, error) {
	assets, err := s.assets.ListWithoutThumbnail(ctx, limit)
	if err != nil {
		return BatchReport{}, fmt.Errorf("list assets without thumbnail: %w", err)
	}
	return s.RunBatch(ctx, assets), nil
}

// RunBatchByIDs resolves ids first; ids that cannot be loaded become failed
// items instead of failing the request.
func (s *ThumbnailService) RunBatchByIDs(ctx context.Context, ids []uuid.UUID) BatchReport {
	if len(ids) == 0 {
		return s.RunBatch(ctx, nil)
	}

	c := NewBatchCollector(len(ids))
	var (
		assets  []entity.Asset
		indexes []int
	)
	for i, id := range ids {
		a, err := s.assets.GetByID(ctx, id)
		if err != nil {
			c.Fail(i, id, "", "lookup", err)
			s.metrics.BatchItem("thumbnail", "failed")
			continue
		}
		assets = append(assets, *a)
		indexes = append(indexes, i)
	}
	s.run(ctx, assets, func(j int) int { return indexes[j] }, c)
	return c.Report()
}

// RunBatch never returns an error: every per-item failure lands in the report.
func (s *ThumbnailService) RunBatch(ctx context.Context, assets []entity.Asset) BatchReport {
	c := NewBatchCollector(len(assets))
	s.run(ctx, assets, func(j int) int { return j }, c)
	rep := c.Report()

	s.log.Info().
		Int("processed", rep.Processed).
		Int("succeeded", rep.Succeeded).
		Int("failed", rep.Failed).
		Bool("nothing_to_do", rep.NothingToDo).
		Msg("thumbnail batch finished")
	return rep
}

func (s *ThumbnailService) run(ctx context.Context, assets []entity.Asset, slot func(int) int, c *BatchCollector) {
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for j := range assets {
		a := assets[j]
		i := slot(j)
		g.Go(func() error {
			s.processOne(ctx, i, a, c)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *ThumbnailService) processOne(ctx context.Context, i int, a entity.Asset, c *BatchCollector) {
	start := time.Now()
	l := s.log.With().Str("asset_id", a.ID.String()).Logger()

	fail := func(stage string, err error) {
		c.Fail(i, a.ID, "", stage, err)
		s.metrics.BatchItem("thumbnail", "failed")
		l.Warn().Err(err).Str("stage", stage).Int64("duration_ms", time.Since(start).Milliseconds()).Msg("thumbnail failed")
	}

	if a.URL == "" {
		fail("encode", fmt.Errorf("%w: asset has no source url", entity.ErrInvalidInput))
		return
	}

	art, err := encoder.Run(ctx, s.enc, encoder.Request{
		Source:  a.URL,
		Target:  encoder.ThumbnailTarget(s.cfg.Offset, s.cfg.Width),
		Timeout: s.cfg.Timeout,
	})
	s.metrics.ObserveEncode(string(encoder.KindThumbnail), encodeOutcome(err), time.Since(start))
	if err != nil {
		fail("encode", err)
		return
	}

	key := storage.ThumbnailKey(a.ID, art.Ext)
	url, err := s.store.Upload(ctx, key, art.Data, art.ContentType)
	if err != nil {
		fail("upload", err)
		return
	}

	if err := s.assets.SetThumbnail(ctx, a.ID, url); err != nil {
		// An existing reference may point at the key just overwritten.
		if a.ThumbnailURL == nil {
			if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
				l.Warn().Err(delErr).Str("key", key).Msg("remove orphaned thumbnail")
			}
		}
		fail("update", err)
		return
	}

	c.Succeed(i, a.ID, "", url)
	s.metrics.BatchItem("thumbnail", "succeeded")
	l.Info().Str("url", url).Int64("duration_ms", time.Since(start).Milliseconds()).Msg("thumbnail stored")
}

func encodeOutcome(err error) string {
	var ee *entity.EncodeError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ee):
		return string(ee.Kind)
	default:
		return "error"
	}
}
