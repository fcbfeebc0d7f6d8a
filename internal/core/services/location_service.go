package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/adapters/persistence/repositories"
	"loyalwallet/internal/core/domain"
)

// LocationService manages company outlets
type LocationService struct {
	locationRepo repositories.LocationRepository
	companyRepo  repositories.CompanyRepository
}

// NewLocationService creates a new location service
func NewLocationService(locationRepo repositories.LocationRepository, companyRepo repositories.CompanyRepository) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		companyRepo:  companyRepo,
	}
}

// CreateLocationInput represents a new outlet
type CreateLocationInput struct {
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	PayUpDate *time.Time `json:"pay_up_date"`
}

// List lists the locations of an existing company
func (s *LocationService) List(ctx context.Context, companyID uint) ([]*models.Location, error) {
	if _, err := s.companyRepo.GetByID(ctx, companyID); err != nil {
		return nil, notFound(err, "company")
	}
	return s.locationRepo.ListByCompany(ctx, companyID)
}

// GetByName gets a company location by name
func (s *LocationService) GetByName(ctx context.Context, companyID uint, name string) (*models.Location, error) {
	location, err := s.locationRepo.GetByName(ctx, companyID, strings.TrimSpace(name))
	if err != nil {
		return nil, notFound(err, "location "+name)
	}
	return location, nil
}

// GetByAddress gets a company location by address
func (s *LocationService) GetByAddress(ctx context.Context, companyID uint, address string) (*models.Location, error) {
	location, err := s.locationRepo.GetByAddress(ctx, companyID, strings.TrimSpace(address))
	if err != nil {
		return nil, notFound(err, "location at "+address)
	}
	return location, nil
}

// Create adds a location to a company
func (s *LocationService) Create(ctx context.Context, companyID uint, input *CreateLocationInput) (*models.Location, error) {
	name := strings.TrimSpace(input.Name)
	address := strings.TrimSpace(input.Address)
	if name == "" || address == "" {
		return nil, fmt.Errorf("location name and address are required: %w", domain.ErrValidation)
	}
	if _, err := s.companyRepo.GetByID(ctx, companyID); err != nil {
		return nil, notFound(err, "company")
	}

	location := &models.Location{
		CompanyID: companyID,
		Name:      name,
		Address:   address,
		PayUpDate: input.PayUpDate,
	}
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

// SetArchived archives or restores a location by name
func (s *LocationService) SetArchived(ctx context.Context, companyID uint, name string, archived bool) (*models.Location, error) {
	location, err := s.GetByName(ctx, companyID, name)
	if err != nil {
		return nil, err
	}

	location.Archived = archived
	if err := s.locationRepo.Update(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

// Delete soft deletes a company location. Scans keep pointing at it.
func (s *LocationService) Delete(ctx context.Context, companyID, id uint) error {
	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "location")
	}
	if location.CompanyID != companyID {
		return fmt.Errorf("location %d: %w", id, domain.ErrNotFound)
	}
	return s.locationRepo.Delete(ctx, id)
}
