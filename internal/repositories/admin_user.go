package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
)

type AdminUserRepository interface {
	FindByUsername(username string) (*models.AdminUser, error)
	Create(user *models.AdminUser) error
}

type adminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

func (r *adminUserRepository) FindByUsername(username string) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("admin user not found")
		}
		return nil, fmt.Errorf("failed to find admin user: %w", err)
	}
	return &user, nil
}

func (r *adminUserRepository) Create(user *models.AdminUser) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}
