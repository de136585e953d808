// Package app wires configuration into the services used by the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"media-job-service/internal/config"
	"media-job-service/internal/encoder"
	"media-job-service/internal/metrics"
	"media-job-service/internal/rendition"
	"media-job-service/internal/repository/postgresql"
	"media-job-service/internal/service"
	"media-job-service/internal/storage"
	"media-job-service/internal/transport/workerclient"
)

// OpenStore returns the object store selected by STORAGE_DRIVER.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStore, error) {
	switch cfg.Driver {
	case "s3":
		st, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			ForcePathStyle:  cfg.S3ForcePathStyle,
			PublicBaseURL:   cfg.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	case "fs", "":
		st, err := storage.NewFileStore(cfg.Path, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func NewEncoder(cfg *config.Config, log zerolog.Logger) *encoder.FFmpeg {
	return encoder.NewFFmpeg(
		encoder.WithBinary(cfg.FFmpegBin),
		encoder.WithLogger(log.With().Str("component", "ffmpeg").Logger()),
	)
}

// Core holds the orchestration services backed by postgres.
type Core struct {
	Pool       *pgxpool.Pool
	Metrics    *metrics.Metrics
	Thumbnails *service.ThumbnailService
	Renditions *service.RenditionService
	AgentJobs  *service.AgentJobService
}

func (c *Core) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// NewCore connects to postgres, applies the schema and builds the services.
// concurrency overrides BATCH_CONCURRENCY when positive.
func NewCore(ctx context.Context, cfg *config.Config, log zerolog.Logger, m *metrics.Metrics, concurrency int) (*Core, error) {
	pool, err := postgresql.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := postgresql.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	store, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	if concurrency <= 0 {
		concurrency = cfg.BatchConcurrency
	}

	assets := postgresql.NewAssetRepository(pool)
	thumbs := service.NewThumbnailService(
		assets,
		NewEncoder(cfg, log),
		store,
		service.ThumbnailConfig{
			Offset:  cfg.ThumbnailOffset,
			Width:   cfg.ThumbnailWidth,
			Timeout: cfg.ThumbnailTimeout,
		},
		service.WithConcurrency(concurrency),
		service.WithThumbnailLogger(log.With().Str("component", "thumbnails").Logger()),
		service.WithThumbnailMetrics(m),
	)
	rends := service.NewRenditionService(
		assets,
		postgresql.NewRenditionRepository(pool),
		workerclient.New(cfg.WorkerURL, cfg.WorkerTimeout),
		rendition.DefaultLadder(),
		log.With().Str("component", "renditions").Logger(),
		m,
	)
	agentJobs := service.NewAgentJobService(
		postgresql.NewAgentJobRepository(pool),
		log.With().Str("component", "agent_jobs").Logger(),
		m,
	)

	return &Core{Pool: pool, Metrics: m, Thumbnails: thumbs, Renditions: rends, AgentJobs: agentJobs}, nil
}
