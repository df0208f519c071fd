package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EvaluationStatus string

const (
	EvaluationPending    EvaluationStatus = "pending"
	EvaluationProcessing EvaluationStatus = "processing"
	EvaluationCompleted  EvaluationStatus = "completed"
	EvaluationFailed     EvaluationStatus = "failed"
)

// ScoreBreakdown is the fixed set of scoring criteria, each on a 0-100
// scale. The scorer's JSON response is validated against this shape before
// an evaluation may transition to completed.
type ScoreBreakdown struct {
	Passion        int `json:"passion"`
	BusinessPlan   int `json:"business_plan"`
	Vision         int `json:"vision"`
	ProblemSolving int `json:"problem_solving"`
	Strength       int `json:"strength"`
}

func (b ScoreBreakdown) Validate() error {
	criteria := map[string]int{
		"passion":         b.Passion,
		"business_plan":   b.BusinessPlan,
		"vision":          b.Vision,
		"problem_solving": b.ProblemSolving,
		"strength":        b.Strength,
	}
	for name, score := range criteria {
		if score < 0 || score > 100 {
			return fmt.Errorf("criterion %s out of range: %d", name, score)
		}
	}
	return nil
}

// Evaluation holds the aggregate score for one applicant, at most one row
// per applicant. TotalScore and DetailedScores are both set exactly when
// EvaluationStatus is completed.
type Evaluation struct {
	ID               uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	ApplicantID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"applicant_id"`
	TotalScore       *int             `json:"total_score,omitempty"`
	DetailedScores   datatypes.JSON   `gorm:"type:jsonb" json:"detailed_scores,omitempty"`
	AIComment        *string          `gorm:"type:text" json:"ai_comment,omitempty"`
	EvaluationStatus EvaluationStatus `gorm:"type:varchar(32);not null;default:'pending'" json:"evaluation_status"`
	ErrorMessage     *string          `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Applicant Applicant `gorm:"foreignKey:ApplicantID" json:"-"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
