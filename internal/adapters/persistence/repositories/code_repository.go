package repositories

import (
	"context"
	"time"

	"loyalwallet/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type codeRepository struct {
	db *gorm.DB
}

// NewCodeRepository creates a new confirmation code repository
func NewCodeRepository(db *gorm.DB) CodeRepository {
	return &codeRepository{db: db}
}

func (r *codeRepository) Create(ctx context.Context, code *models.Code) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// GetLatest returns the most recently issued code for a phone
func (r *codeRepository) GetLatest(ctx context.Context, companyID uint, phone string) (*models.Code, error) {
	var code models.Code
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND phone_number = ?", companyID, phone).
		Order("id DESC").
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *codeRepository) DeleteByPhone(ctx context.Context, companyID uint, phone string) error {
	return r.db.WithContext(ctx).
		Where("company_id = ? AND phone_number = ?", companyID, phone).
		Delete(&models.Code{}).Error
}

// DeleteExpired removes codes past their expiry (cleanup job)
func (r *codeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.Code{})
	return result.RowsAffected, result.Error
}
