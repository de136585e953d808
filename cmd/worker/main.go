package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "media-job-service/docs"
	"media-job-service/internal/app"
	"media-job-service/internal/config"
	"media-job-service/internal/logger"
	"media-job-service/internal/metrics"
	"media-job-service/internal/rendition"
	"media-job-service/internal/repository/postgresql"
	"media-job-service/internal/service"
	httptransport "media-job-service/internal/transport/http"
	"media-job-service/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.New("").Fatal().Err(err).Msg("config")
	}
	log := logger.New(cfg.AppEnv).With().Str("service", "worker").Logger()

	// Postgres
	pool, err := postgresql.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("pg")
	}
	defer pool.Close()
	if err := postgresql.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("pg migrate")
	}

	// Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis")
	}

	store, err := app.OpenStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("storage")
	}

	m := metrics.New()
	jobs := postgresql.NewJobRepository(pool)
	low, normal, high := service.LanesFor(cfg.RedisQueueKey, cfg.RedisProcessingKey)
	queue := service.NewRedisQueue(rdb, cfg.RedisProcessingMapKey, low, normal, high)

	// Reaper: ids held past the visibility timeout by a dead worker go back to the queue.
	reaper := &worker.Reaper{
		Queue:             queue,
		Interval:          30 * time.Second,
		VisibilityTimeout: cfg.QueueVisibilityTimeout,
		Log:               log,
		Metrics:           m,
	}
	go reaper.Run(ctx)

	processor := worker.NewProcessor(worker.Deps{
		Jobs:         jobs,
		Renditions:   postgresql.NewRenditionRepository(pool),
		Assets:       postgresql.NewAssetRepository(pool),
		Encoder:      app.NewEncoder(cfg, log),
		Store:        store,
		Ladder:       rendition.DefaultLadder(),
		Timeout:      cfg.RenditionTimeout,
		ReclaimAfter: cfg.QueueVisibilityTimeout,
		Log:          log,
		Metrics:      m,
	})
	workers := worker.NewPool(queue, processor, cfg.Workers, log)

	h := httptransport.NewWorkerHandler(service.NewJobService(jobs, queue), log)
	srv := &http.Server{
		Addr:              cfg.WorkerHTTPAddr,
		Handler:           httptransport.WorkerRoutes(h, log, m),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server")
			stop()
		}
	}()

	log.Info().
		Int("workers", cfg.Workers).
		Str("addr", cfg.WorkerHTTPAddr).
		Str("redis_addr", cfg.RedisAddr).
		Str("queue_key", cfg.RedisQueueKey).
		Str("processing_key", cfg.RedisProcessingKey).
		Dur("visibility_timeout", cfg.QueueVisibilityTimeout).
		Str("postgres_dsn", config.RedactDSN(cfg.PostgresDSN)).
		Msg("worker started")

	workers.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("worker stopped")
}
