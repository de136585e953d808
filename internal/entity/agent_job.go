package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AgentJobStatus string

const (
	AgentJobQueued     AgentJobStatus = "queued"
	AgentJobProcessing AgentJobStatus = "processing"
	AgentJobCompleted  AgentJobStatus = "completed"
	AgentJobFailed     AgentJobStatus = "failed"
)

func (s AgentJobStatus) Valid() bool {
	switch s {
	case AgentJobQueued, AgentJobProcessing, AgentJobCompleted, AgentJobFailed:
		return true
	default:
		return false
	}
}

func (s AgentJobStatus) Terminal() bool {
	return s == AgentJobCompleted || s == AgentJobFailed
}

// Cancellable reports whether a job in this state may be cancelled.
// In-flight work is never preempted.
func (s AgentJobStatus) Cancellable() bool {
	return s == AgentJobQueued
}

// AgentJob is created by the planner and advanced by the executor; this
// service only reads and cancels it.
type AgentJob struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"user_id"`
	Status    AgentJobStatus  `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
