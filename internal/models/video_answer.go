package models

import (
	"time"

	"github.com/google/uuid"
)

type TranscriptionStatus string

const (
	TranscriptionPending    TranscriptionStatus = "pending"
	TranscriptionProcessing TranscriptionStatus = "processing"
	TranscriptionCompleted  TranscriptionStatus = "completed"
	TranscriptionFailed     TranscriptionStatus = "failed"
)

// VideoAnswer is the one row per (applicant, question) pair. A retake
// overwrites VideoURL and resets the transcription state; it never creates
// a second row. The VideoURL doubles as the staleness token: workers only
// write results whose locator still matches the row.
type VideoAnswer struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	ApplicantID         uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_answer_applicant_question" json:"applicant_id"`
	QuestionID          uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_answer_applicant_question" json:"question_id"`
	VideoURL            string              `gorm:"type:text;not null" json:"video_url"`
	Transcript          *string             `gorm:"type:text" json:"transcript,omitempty"`
	TranscriptionStatus TranscriptionStatus `gorm:"type:varchar(32);not null;default:'pending'" json:"transcription_status"`
	CreatedAt           time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Applicant Applicant `gorm:"foreignKey:ApplicantID" json:"-"`
	Question  Question  `gorm:"foreignKey:QuestionID" json:"-"`
}

func (VideoAnswer) TableName() string {
	return "video_answers"
}
