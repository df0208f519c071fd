package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
)

// AnswerTranscript is one transcribed answer paired with its question, the
// scorer's unit of input.
type AnswerTranscript struct {
	QuestionText string
	OrderNumber  int
	Transcript   *string
}

type VideoAnswerRepository interface {
	// Upsert writes the single row for (applicant, question). A retake
	// overwrites the locator, resets the state to pending and clears the
	// previous transcript.
	Upsert(applicantID, questionID uuid.UUID, videoURL string) (*models.VideoAnswer, error)
	FindByID(id uuid.UUID) (*models.VideoAnswer, error)
	FindDetailsByApplicant(applicantID uuid.UUID) ([]models.AnswerDetail, error)
	FindTranscriptsByApplicant(applicantID uuid.UUID) ([]AnswerTranscript, error)
	CountCompletedByApplicant(applicantID uuid.UUID) (int64, error)

	// The guarded transitions below only land while videoURL still matches
	// the row, so a task bound to a superseded locator can never overwrite
	// newer state. Each reports whether the write landed.
	MarkProcessing(id uuid.UUID, videoURL string) (bool, error)
	Complete(id uuid.UUID, videoURL, transcript string) (bool, error)
	MarkFailed(id uuid.UUID, videoURL string) (bool, error)
}

type videoAnswerRepository struct {
	db *gorm.DB
}

func NewVideoAnswerRepository(db *gorm.DB) VideoAnswerRepository {
	return &videoAnswerRepository{db: db}
}

func (r *videoAnswerRepository) Upsert(applicantID, questionID uuid.UUID, videoURL string) (*models.VideoAnswer, error) {
	var answer models.VideoAnswer
	err := r.db.Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("applicant_id = ? AND question_id = ?", applicantID, questionID).
			First(&answer).Error
		if findErr == nil {
			updates := map[string]interface{}{
				"video_url":            videoURL,
				"transcript":           nil,
				"transcription_status": models.TranscriptionPending,
				"updated_at":           time.Now(),
			}
			if err := tx.Model(&answer).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update video answer: %w", err)
			}
			answer.VideoURL = videoURL
			answer.Transcript = nil
			answer.TranscriptionStatus = models.TranscriptionPending
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find video answer: %w", findErr)
		}

		answer = models.VideoAnswer{
			ID:                  uuid.New(),
			ApplicantID:         applicantID,
			QuestionID:          questionID,
			VideoURL:            videoURL,
			TranscriptionStatus: models.TranscriptionPending,
			CreatedAt:           time.Now(),
			UpdatedAt:           time.Now(),
		}
		if err := tx.Create(&answer).Error; err != nil {
			return fmt.Errorf("failed to create video answer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *videoAnswerRepository) FindByID(id uuid.UUID) (*models.VideoAnswer, error) {
	var answer models.VideoAnswer
	if err := r.db.Where("id = ?", id).First(&answer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("video answer not found")
		}
		return nil, fmt.Errorf("failed to find video answer: %w", err)
	}
	return &answer, nil
}

func (r *videoAnswerRepository) FindDetailsByApplicant(applicantID uuid.UUID) ([]models.AnswerDetail, error) {
	var rows []models.AnswerDetail
	err := r.db.Model(&models.VideoAnswer{}).
		Select("video_answers.id, video_answers.question_id, questions.question_text, questions.order_number, video_answers.video_url, video_answers.transcript, video_answers.transcription_status").
		Joins("INNER JOIN questions ON questions.id = video_answers.question_id").
		Where("video_answers.applicant_id = ?", applicantID).
		Order("questions.order_number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list video answers: %w", err)
	}
	return rows, nil
}

func (r *videoAnswerRepository) FindTranscriptsByApplicant(applicantID uuid.UUID) ([]AnswerTranscript, error) {
	var rows []AnswerTranscript
	err := r.db.Model(&models.VideoAnswer{}).
		Select("questions.question_text, questions.order_number, video_answers.transcript").
		Joins("INNER JOIN questions ON questions.id = video_answers.question_id").
		Where("video_answers.applicant_id = ?", applicantID).
		Order("questions.order_number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load transcripts: %w", err)
	}
	return rows, nil
}

func (r *videoAnswerRepository) CountCompletedByApplicant(applicantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.VideoAnswer{}).
		Where("applicant_id = ? AND transcription_status = ?", applicantID, models.TranscriptionCompleted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed answers: %w", err)
	}
	return count, nil
}

func (r *videoAnswerRepository) MarkProcessing(id uuid.UUID, videoURL string) (bool, error) {
	result := r.db.Model(&models.VideoAnswer{}).
		Where("id = ? AND video_url = ?", id, videoURL).
		Updates(map[string]interface{}{
			"transcription_status": models.TranscriptionProcessing,
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark answer processing: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *videoAnswerRepository) Complete(id uuid.UUID, videoURL, transcript string) (bool, error) {
	result := r.db.Model(&models.VideoAnswer{}).
		Where("id = ? AND video_url = ?", id, videoURL).
		Updates(map[string]interface{}{
			"transcript":           transcript,
			"transcription_status": models.TranscriptionCompleted,
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to complete answer: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *videoAnswerRepository) MarkFailed(id uuid.UUID, videoURL string) (bool, error) {
	result := r.db.Model(&models.VideoAnswer{}).
		Where("id = ? AND video_url = ?", id, videoURL).
		Updates(map[string]interface{}{
			"transcription_status": models.TranscriptionFailed,
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark answer failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
