// Package models defines the persisted job model and the domain types that
// flow through the translation pipeline.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Job status constants
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
	JobStatusCancelled  = "cancelled"
)

// JobTypeTranslation is the job type handled by the baseline pipeline.
const JobTypeTranslation = "translation"

// Job corresponds to the jobs table. Rows are owned by the job queue and are
// never deleted from the hot table; the retention sweeper moves terminal
// rows to archived_jobs.
type Job struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Type        string         `gorm:"type:varchar(50);not null" json:"type"`
	Status      string         `gorm:"type:varchar(20);not null;index" json:"status"`
	Request     datatypes.JSON `gorm:"type:json;not null" json:"request"`
	Result      datatypes.JSON `gorm:"type:json" json:"result,omitempty"`
	Error       string         `gorm:"type:text" json:"error,omitempty"`
	Progress    int            `gorm:"not null;default:0" json:"progress"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
}

// ArchivedJob mirrors Job in the archive table written by the retention
// sweeper.
type ArchivedJob struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Type        string         `gorm:"type:varchar(50);not null" json:"type"`
	Status      string         `gorm:"type:varchar(20);not null;index" json:"status"`
	Request     datatypes.JSON `gorm:"type:json;not null" json:"request"`
	Result      datatypes.JSON `gorm:"type:json" json:"result,omitempty"`
	Error       string         `gorm:"type:text" json:"error,omitempty"`
	Progress    int            `gorm:"not null;default:0" json:"progress"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
	ArchivedAt  time.Time      `gorm:"index" json:"archived_at"`
}

// IsTerminal reports whether status is a terminal job status. Terminal jobs
// never mutate again (manual retry excepted, which is an explicit
// failed→pending transition).
func IsTerminal(status string) bool {
	switch status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// validTransitions is the status transition table enforced by the queue.
var validTransitions = map[string][]string{
	JobStatusPending:    {JobStatusProcessing, JobStatusCancelled},
	JobStatusProcessing: {JobStatusCompleted, JobStatusFailed},
	JobStatusFailed:     {JobStatusPending}, // manual retry only
}

// CanTransition reports whether a job may move from one status to another.
func CanTransition(from, to string) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
