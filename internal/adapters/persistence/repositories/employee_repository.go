package repositories

import (
	"context"

	"loyalwallet/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// employeeRepository implements EmployeeRepository interface
type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// Create creates a new employee
func (r *employeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

// GetByID gets an employee by ID
func (r *employeeRepository) GetByID(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).First(&employee, id).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// GetByIDForUpdate gets an employee by ID and locks the row for the surrounding transaction
func (r *employeeRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	err := forUpdate(r.db.WithContext(ctx)).First(&employee, id).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// GetByName gets a company employee by name and surname
func (r *employeeRepository) GetByName(ctx context.Context, companyID uint, name, surname string) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND name = ? AND surname = ?", companyID, name, surname).
		First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// ListByCompany lists all employees of a company
func (r *employeeRepository) ListByCompany(ctx context.Context, companyID uint) ([]*models.Employee, error) {
	var employees []*models.Employee
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("company_id = ?", companyID).
		Order("id ASC").
		Find(&employees).Error
	return employees, err
}

// Update updates an employee
func (r *employeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Omit("Location").Save(employee).Error
}

// Delete soft deletes an employee
func (r *employeeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Employee{}, id).Error
}
