package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
)

type EvaluationRepository interface {
	// UpsertProcessing creates the applicant's evaluation row on the first
	// attempt and moves it to processing; subsequent attempts reuse the
	// same row. Keyed by the applicant's unique index, so racing callers
	// converge on one row.
	UpsertProcessing(applicantID uuid.UUID) (*models.Evaluation, error)
	CompleteResult(applicantID uuid.UUID, totalScore int, breakdown models.ScoreBreakdown, comment string) error
	MarkFailed(applicantID uuid.UUID, errorMsg string) error
	FindByApplicant(applicantID uuid.UUID) (*models.Evaluation, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) UpsertProcessing(applicantID uuid.UUID) (*models.Evaluation, error) {
	var eval models.Evaluation
	err := r.db.Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("applicant_id = ?", applicantID).First(&eval).Error
		if findErr == nil {
			updates := map[string]interface{}{
				"evaluation_status": models.EvaluationProcessing,
				"error_message":     nil,
				"updated_at":        time.Now(),
			}
			if err := tx.Model(&eval).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update evaluation: %w", err)
			}
			eval.EvaluationStatus = models.EvaluationProcessing
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find evaluation: %w", findErr)
		}

		eval = models.Evaluation{
			ID:               uuid.New(),
			ApplicantID:      applicantID,
			EvaluationStatus: models.EvaluationProcessing,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}
		if err := tx.Create(&eval).Error; err != nil {
			return fmt.Errorf("failed to create evaluation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &eval, nil
}

func (r *evaluationRepository) CompleteResult(applicantID uuid.UUID, totalScore int, breakdown models.ScoreBreakdown, comment string) error {
	scores, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode score breakdown: %w", err)
	}

	result := r.db.Model(&models.Evaluation{}).
		Where("applicant_id = ?", applicantID).
		Updates(map[string]interface{}{
			"total_score":       totalScore,
			"detailed_scores":   datatypes.JSON(scores),
			"ai_comment":        comment,
			"evaluation_status": models.EvaluationCompleted,
			"error_message":     nil,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save evaluation result: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("evaluation not found")
	}
	return nil
}

func (r *evaluationRepository) MarkFailed(applicantID uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.Evaluation{}).
		Where("applicant_id = ?", applicantID).
		Updates(map[string]interface{}{
			"evaluation_status": models.EvaluationFailed,
			"error_message":     errorMsg,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark evaluation failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("evaluation not found")
	}
	return nil
}

func (r *evaluationRepository) FindByApplicant(applicantID uuid.UUID) (*models.Evaluation, error) {
	var eval models.Evaluation
	if err := r.db.Where("applicant_id = ?", applicantID).First(&eval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("evaluation not found")
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &eval, nil
}
