package httptransport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"media-job-service/internal/entity"
	"media-job-service/internal/service"
)

// Handler serves the admin and agent job API.
type Handler struct {
	thumbnails *service.ThumbnailService
	renditions *service.RenditionService
	agentJobs  *service.AgentJobService
}

func NewHandler(thumbnails *service.ThumbnailService, renditions *service.RenditionService, agentJobs *service.AgentJobService) *Handler {
	return &Handler{thumbnails: thumbnails, renditions: renditions, agentJobs: agentJobs}
}

type batchDTO struct {
	AssetIDs []uuid.UUID `json:"assetIds"`
}

type agentJobResp struct {
	ID        string                `json:"id"`
	Status    entity.AgentJobStatus `json:"status"`
	Payload   json.RawMessage       `json:"payload,omitempty"`
	Result    json.RawMessage       `json:"result,omitempty"`
	CreatedAt string                `json:"created_at"`
	UpdatedAt string                `json:"updated_at"`
}

func toAgentJobResp(j *entity.AgentJob) agentJobResp {
	return agentJobResp{
		ID:        j.ID.String(),
		Status:    j.Status,
		Payload:   j.Payload,
		Result:    j.Result,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// BackfillThumbnails godoc
// @Summary Generate missing thumbnails
// @Description Runs a thumbnail batch over assets that have none. Per-item failures are reported, never returned as errors.
// @Tags thumbnails
// @Produce json
// @Param limit query int false "max assets (default 100)"
// @Success 200 {object} service.BatchReport
// @Failure 400 {object} apiError
// @Failure 500 {object} apiError
// @Router /admin/thumbnails/backfill [post]
func (h *Handler) BackfillThumbnails(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeErr(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	rep, err := h.thumbnails.Backfill(r.Context(), limit)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ThumbnailBatch godoc
// @Summary Generate thumbnails for given assets
// @Tags thumbnails
// @Accept json
// @Produce json
// @Param request body batchDTO true "asset ids"
// @Success 200 {object} service.BatchReport
// @Failure 400 {object} apiError
// @Router /admin/thumbnails/batch [post]
func (h *Handler) ThumbnailBatch(w http.ResponseWriter, r *http.Request) {
	var dto batchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	writeJSON(w, http.StatusOK, h.thumbnails.RunBatchByIDs(r.Context(), dto.AssetIDs))
}

// ReconcileRenditions godoc
// @Summary Dispatch missing renditions of an asset
// @Description Narrows the asset's cascade to missing tiers and hands them to the rendition worker without waiting.
// @Tags renditions
// @Produce json
// @Param id path string true "asset id (uuid)"
// @Success 200 {object} service.DispatchAck
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 502 {object} apiError
// @Router /admin/assets/{id}/renditions/reconcile [post]
func (h *Handler) ReconcileRenditions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	ack, err := h.renditions.Reconcile(r.Context(), id)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// ListAgentJobs godoc
// @Summary List the caller's agent jobs
// @Tags agent-jobs
// @Produce json
// @Param X-User-ID header string true "owner id"
// @Param status query string false "queued|processing|completed|failed"
// @Param limit query int false "max jobs (default 50)"
// @Success 200 {array} agentJobResp
// @Failure 400 {object} apiError
// @Failure 401 {object} apiError
// @Router /agent-jobs [get]
func (h *Handler) ListAgentJobs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeErr(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	status := entity.AgentJobStatus(r.URL.Query().Get("status"))

	jobs, err := h.agentJobs.List(r.Context(), ownerFrom(r.Context()), status, limit)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	out := make([]agentJobResp, 0, len(jobs))
	for i := range jobs {
		out = append(out, toAgentJobResp(&jobs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAgentJob godoc
// @Summary Get an agent job owned by the caller
// @Tags agent-jobs
// @Produce json
// @Param X-User-ID header string true "owner id"
// @Param id path string true "job id (uuid)"
// @Success 200 {object} agentJobResp
// @Failure 400 {object} apiError
// @Failure 401 {object} apiError
// @Failure 404 {object} apiError
// @Router /agent-jobs/{id} [get]
func (h *Handler) GetAgentJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	j, err := h.agentJobs.Get(r.Context(), id, ownerFrom(r.Context()))
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentJobResp(j))
}

// CancelAgentJob godoc
// @Summary Cancel a queued agent job
// @Description Deletes the job while it is still queued. Jobs already processing or finished are left untouched.
// @Tags agent-jobs
// @Param X-User-ID header string true "owner id"
// @Param id path string true "job id (uuid)"
// @Success 204
// @Failure 400 {object} apiError
// @Failure 401 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /agent-jobs/{id} [delete]
func (h *Handler) CancelAgentJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.agentJobs.Cancel(r.Context(), id, ownerFrom(r.Context())); err != nil {
		writeServiceErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
