package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"media-job-service/internal/entity"
	"media-job-service/internal/service"
)

// WorkerHandler is the rendition worker's intake API.
type WorkerHandler struct {
	jobSvc *service.JobService
	log    zerolog.Logger
}

func NewWorkerHandler(jobSvc *service.JobService, log zerolog.Logger) *WorkerHandler {
	return &WorkerHandler{jobSvc: jobSvc, log: log}
}

type generateResp struct {
	JobID string `json:"jobId"`
}

type jobResp struct {
	ID        string           `json:"id"`
	AssetID   string           `json:"assetId"`
	Status    entity.JobStatus `json:"status"`
	Priority  int              `json:"priority"`
	Input     json.RawMessage  `json:"input"`
	Output    json.RawMessage  `json:"output,omitempty"`
	Error     *string          `json:"error,omitempty"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
}

// GenerateRenditions godoc
// @Summary Accept rendition work
// @Description Stores the request as a pending job, queues it and returns at once.
// @Tags worker
// @Accept json
// @Produce json
// @Param X-Request-ID header string false "correlation id"
// @Param request body entity.DispatchRequest true "dispatch request"
// @Success 202 {object} generateResp
// @Failure 400 {object} apiError
// @Failure 500 {object} apiError
// @Router /generate-renditions [post]
func (h *WorkerHandler) GenerateRenditions(w http.ResponseWriter, r *http.Request) {
	var req entity.DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	id, err := h.jobSvc.CreateJob(r.Context(), req, service.PriorityNormal)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}

	h.log.Info().
		Str("req_id", middleware.GetReqID(r.Context())).
		Str("job_id", id.String()).
		Str("asset_id", req.AssetID.String()).
		Interface("targets", req.TargetResolutions).
		Msg("rendition job accepted")

	writeJSON(w, http.StatusAccepted, generateResp{JobID: id.String()})
}

// GetJob godoc
// @Summary Get rendition job by id
// @Tags worker
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {object} jobResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /jobs/{id} [get]
func (h *WorkerHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	j, err := h.jobSvc.GetJob(r.Context(), id)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jobResp{
		ID:        j.ID.String(),
		AssetID:   j.AssetID.String(),
		Status:    j.Status,
		Priority:  j.Priority,
		Input:     j.Input,
		Output:    j.Output,
		Error:     j.Error,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
	})
}
