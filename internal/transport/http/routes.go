package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"media-job-service/internal/metrics"
)

func baseRouter(log zerolog.Logger, m *metrics.Metrics) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	return r
}

// Routes is the API binary's router.
func Routes(h *Handler, log zerolog.Logger, m *metrics.Metrics) http.Handler {
	r := baseRouter(log, m)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/thumbnails/backfill", h.BackfillThumbnails)
		r.Post("/thumbnails/batch", h.ThumbnailBatch)
		r.Post("/assets/{id}/renditions/reconcile", h.ReconcileRenditions)
	})

	r.Route("/agent-jobs", func(r chi.Router) {
		r.Use(RequireOwner)
		r.Get("/", h.ListAgentJobs)
		r.Get("/{id}", h.GetAgentJob)
		r.Delete("/{id}", h.CancelAgentJob)
	})

	return r
}

// WorkerRoutes is the rendition worker's router.
func WorkerRoutes(h *WorkerHandler, log zerolog.Logger, m *metrics.Metrics) http.Handler {
	r := baseRouter(log, m)

	r.Post("/generate-renditions", h.GenerateRenditions)
	r.Get("/jobs/{id}", h.GetJob)

	return r
}
