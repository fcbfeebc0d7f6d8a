package services

import (
	"context"
	"fmt"
	"strings"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/adapters/persistence/repositories"
	"loyalwallet/internal/core/domain"
)

// EmployeeService manages the staff who scan cards
type EmployeeService struct {
	employeeRepo repositories.EmployeeRepository
	locationRepo repositories.LocationRepository
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(employeeRepo repositories.EmployeeRepository, locationRepo repositories.LocationRepository) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		locationRepo: locationRepo,
	}
}

// CreateEmployeeInput represents a new employee
type CreateEmployeeInput struct {
	LocationID uint   `json:"location_id"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Email      string `json:"email"`
	Position   string `json:"position"`
}

// List lists company employees with their locations
func (s *EmployeeService) List(ctx context.Context, companyID uint) ([]*models.Employee, error) {
	return s.employeeRepo.ListByCompany(ctx, companyID)
}

// Get gets a company employee by ID
func (s *EmployeeService) Get(ctx context.Context, companyID, id uint) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "employee")
	}
	if companyID != 0 && employee.CompanyID != companyID {
		return nil, fmt.Errorf("employee %d: %w", id, domain.ErrNotFound)
	}
	return employee, nil
}

// GetByName gets a company employee by name and surname
func (s *EmployeeService) GetByName(ctx context.Context, companyID uint, name, surname string) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetByName(ctx, companyID, strings.TrimSpace(name), strings.TrimSpace(surname))
	if err != nil {
		return nil, notFound(err, "employee "+name+" "+surname)
	}
	return employee, nil
}

// Create adds an employee to one of the company's own locations
func (s *EmployeeService) Create(ctx context.Context, companyID uint, input *CreateEmployeeInput) (*models.Employee, error) {
	name := strings.TrimSpace(input.Name)
	surname := strings.TrimSpace(input.Surname)
	if name == "" || surname == "" {
		return nil, fmt.Errorf("employee name and surname are required: %w", domain.ErrValidation)
	}

	location, err := s.locationRepo.GetByID(ctx, input.LocationID)
	if err != nil {
		return nil, notFound(err, "location")
	}
	if location.CompanyID != companyID {
		return nil, fmt.Errorf("location %d belongs to another company: %w", location.ID, domain.ErrInvalidReference)
	}

	employee := &models.Employee{
		CompanyID:  companyID,
		LocationID: location.ID,
		Name:       name,
		Surname:    surname,
		Email:      strings.TrimSpace(input.Email),
		Position:   strings.TrimSpace(input.Position),
	}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, err
	}
	employee.Location = location
	return employee, nil
}

// SetArchived archives or restores an employee
func (s *EmployeeService) SetArchived(ctx context.Context, companyID, id uint, archived bool) (*models.Employee, error) {
	employee, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	employee.Archived = archived
	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// Delete soft deletes a company employee. Scans keep pointing at them.
func (s *EmployeeService) Delete(ctx context.Context, companyID, id uint) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	return s.employeeRepo.Delete(ctx, id)
}
