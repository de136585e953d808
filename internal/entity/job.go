package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the worker-side status of a rendition job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusDone       JobStatus = "done"
	StatusError      JobStatus = "error"
)

// RenditionJob is the worker's record of one accepted dispatch.
type RenditionJob struct {
	ID        uuid.UUID       `json:"id"`
	AssetID   uuid.UUID       `json:"asset_id"`
	Status    JobStatus       `json:"status"`
	Input     json.RawMessage `json:"input"`
	Output    json.RawMessage `json:"output,omitempty"`
	Error     *string         `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Priority  int             `json:"priority" db:"priority"`
}

// Request decodes the stored dispatch payload.
func (j *RenditionJob) Request() (DispatchRequest, error) {
	var req DispatchRequest
	if len(j.Input) == 0 {
		return req, ErrInvalidInput
	}
	if err := json.Unmarshal(j.Input, &req); err != nil {
		return req, err
	}
	return req, nil
}
