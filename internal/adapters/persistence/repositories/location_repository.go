package repositories

import (
	"context"

	"loyalwallet/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// locationRepository implements LocationRepository interface
type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

// Create creates a new location
func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

// GetByID gets a location by ID
func (r *locationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).First(&location, id).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// GetByName gets a company location by name
func (r *locationRepository) GetByName(ctx context.Context, companyID uint, name string) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND name = ?", companyID, name).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// GetByAddress gets a company location by address
func (r *locationRepository) GetByAddress(ctx context.Context, companyID uint, address string) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND address = ?", companyID, address).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// ListByCompany lists all locations of a company
func (r *locationRepository) ListByCompany(ctx context.Context, companyID uint) ([]*models.Location, error) {
	var locations []*models.Location
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id ASC").
		Find(&locations).Error
	return locations, err
}

// IDsByName returns the ids of company locations carrying a name
func (r *locationRepository) IDsByName(ctx context.Context, companyID uint, name string) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).
		Model(&models.Location{}).
		Where("company_id = ? AND name = ?", companyID, name).
		Pluck("id", &ids).Error
	return ids, err
}

// Update updates a location
func (r *locationRepository) Update(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}

// Delete soft deletes a location
func (r *locationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Location{}, id).Error
}
