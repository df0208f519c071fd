package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
)

type QuestionRepository interface {
	FindAll() ([]models.Question, error)
	FindByID(id uuid.UUID) (*models.Question, error)
	Count() (int64, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindAll() ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.Order("order_number ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (r *questionRepository) FindByID(id uuid.UUID) (*models.Question, error) {
	var question models.Question
	if err := r.db.Where("id = ?", id).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("question not found")
		}
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	return &question, nil
}

func (r *questionRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Question{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}
