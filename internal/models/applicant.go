package models

import (
	"time"

	"github.com/google/uuid"
)

type ApplicantStatus string

const (
	ApplicantPending        ApplicantStatus = "pending"
	ApplicantVideoSubmitted ApplicantStatus = "video_submitted"
	ApplicantEvaluated      ApplicantStatus = "evaluated"
	ApplicantAccepted       ApplicantStatus = "accepted"
	ApplicantRejected       ApplicantStatus = "rejected"
)

// statusRank orders the pipeline axis. The accepted/rejected decision is a
// separate manual axis set by admins and never written by the pipeline.
var statusRank = map[ApplicantStatus]int{
	ApplicantPending:        0,
	ApplicantVideoSubmitted: 1,
	ApplicantEvaluated:      2,
}

// PipelinePredecessors returns every status the pipeline is allowed to
// advance from when moving an applicant to target. A status outside the
// pipeline axis (accepted/rejected) has no predecessors, so the pipeline
// never regresses a manual decision.
func PipelinePredecessors(target ApplicantStatus) []ApplicantStatus {
	rank, ok := statusRank[target]
	if !ok {
		return nil
	}
	var prev []ApplicantStatus
	for s, r := range statusRank {
		if r < rank {
			prev = append(prev, s)
		}
	}
	return prev
}

func (s ApplicantStatus) Valid() bool {
	switch s {
	case ApplicantPending, ApplicantVideoSubmitted, ApplicantEvaluated, ApplicantAccepted, ApplicantRejected:
		return true
	}
	return false
}

type Applicant struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Email           string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	BusinessPlanURL *string         `gorm:"type:text" json:"business_plan_url,omitempty"`
	Status          ApplicantStatus `gorm:"type:varchar(32);not null;default:'pending'" json:"status"`
	CreatedAt       time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Applicant) TableName() string {
	return "applicants"
}
