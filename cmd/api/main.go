// @title Media Job Service API
// @version 1.0
// @description Thumbnail batches, rendition dispatch and agent job lifecycle.
// @BasePath /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "media-job-service/docs"
	"media-job-service/internal/app"
	"media-job-service/internal/config"
	"media-job-service/internal/logger"
	"media-job-service/internal/metrics"
	httptransport "media-job-service/internal/transport/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.New("").Fatal().Err(err).Msg("config")
	}
	log := logger.New(cfg.AppEnv).With().Str("service", "api").Logger()

	m := metrics.New()
	core, err := app.NewCore(ctx, cfg, log, m, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	defer core.Close()

	h := httptransport.NewHandler(core.Thumbnails, core.Renditions, core.AgentJobs)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httptransport.Routes(h, log, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("worker_url", cfg.WorkerURL).
		Str("storage", cfg.Storage.Driver).
		Str("postgres_dsn", config.RedactDSN(cfg.PostgresDSN)).
		Msg("api started")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("api stopped")
}
