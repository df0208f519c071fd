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

type ApplicantRepository interface {
	Create(applicant *models.Applicant) error
	FindByID(id uuid.UUID) (*models.Applicant, error)
	ListSummaries() ([]models.ApplicantSummary, error)
	// AdvanceStatus moves the applicant forward on the pipeline axis. The
	// write only lands if the current status precedes the target, so the
	// pipeline can never regress a later status or a manual decision.
	AdvanceStatus(id uuid.UUID, target models.ApplicantStatus) error
	// SetDecision applies the admin accept/reject axis unconditionally.
	SetDecision(id uuid.UUID, status models.ApplicantStatus) error
}

type applicantRepository struct {
	db *gorm.DB
}

func NewApplicantRepository(db *gorm.DB) ApplicantRepository {
	return &applicantRepository{db: db}
}

func (r *applicantRepository) Create(applicant *models.Applicant) error {
	if err := r.db.Create(applicant).Error; err != nil {
		return fmt.Errorf("failed to create applicant: %w", err)
	}
	return nil
}

func (r *applicantRepository) FindByID(id uuid.UUID) (*models.Applicant, error) {
	var applicant models.Applicant
	if err := r.db.Where("id = ?", id).First(&applicant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("applicant not found")
		}
		return nil, fmt.Errorf("failed to find applicant: %w", err)
	}
	return &applicant, nil
}

func (r *applicantRepository) ListSummaries() ([]models.ApplicantSummary, error) {
	var rows []models.ApplicantSummary
	err := r.db.Model(&models.Applicant{}).
		Select("applicants.id, applicants.name, applicants.email, applicants.status, applicants.created_at, evaluations.total_score, evaluations.evaluation_status").
		Joins("LEFT JOIN evaluations ON evaluations.applicant_id = applicants.id").
		Order("applicants.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	return rows, nil
}

func (r *applicantRepository) AdvanceStatus(id uuid.UUID, target models.ApplicantStatus) error {
	predecessors := models.PipelinePredecessors(target)
	if len(predecessors) == 0 {
		return fmt.Errorf("status %s is not on the pipeline axis", target)
	}

	result := r.db.Model(&models.Applicant{}).
		Where("id = ? AND status IN ?", id, predecessors).
		Updates(map[string]interface{}{
			"status":     target,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to advance applicant status: %w", result.Error)
	}
	// Zero rows means the applicant is already at or past the target; the
	// advance is a no-op.
	return nil
}

func (r *applicantRepository) SetDecision(id uuid.UUID, status models.ApplicantStatus) error {
	result := r.db.Model(&models.Applicant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update applicant status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("applicant not found")
	}
	return nil
}
