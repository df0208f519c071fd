package models

import (
	"time"

	"github.com/google/uuid"
)

// Question is read-only to the pipeline; the set of questions defines how
// many transcribed answers an applicant needs before evaluation starts.
type Question struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QuestionText       string    `gorm:"type:text;not null" json:"question_text"`
	OrderNumber        int       `gorm:"not null;uniqueIndex" json:"order_number"`
	IsRequired         bool      `gorm:"not null;default:true" json:"is_required"`
	MaxDurationSeconds int       `gorm:"not null;default:180" json:"max_duration_seconds"`
	CreatedAt          time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Question) TableName() string {
	return "questions"
}
