package db

import (
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 20

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Stage status constants
const (
	StageStatusCompleted = "completed"
	StageStatusFailed    = "failed"
	StageStatusSkipped   = "skipped"
)

// Run represents one invocation of the sync pipeline
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Command     string     `json:"command"`
	Status      string     `json:"status"`
	Message     string     `json:"message,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StageRecord is the stored outcome of one stage
type StageRecord struct {
	Stage    string        `json:"stage"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
}

// NewStageRecord builds a record from a stage result. A nil err is a
// completed stage; otherwise the error text becomes the message.
func NewStageRecord(stage string, d time.Duration, err error) StageRecord {
	rec := StageRecord{Stage: stage, Status: StageStatusCompleted, Duration: d}
	if err != nil {
		rec.Status = StageStatusFailed
		rec.Message = err.Error()
	}
	return rec
}
