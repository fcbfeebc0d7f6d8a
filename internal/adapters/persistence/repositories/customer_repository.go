package repositories

import (
	"context"

	"loyalwallet/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// customerRepository implements CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create creates a new customer
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// GetByID gets a customer by ID
func (r *customerRepository) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetByIDForUpdate gets a customer by ID and locks the row for the surrounding transaction
func (r *customerRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := forUpdate(r.db.WithContext(ctx)).First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetBySerialForUpdate gets a customer by card serial and locks the row
func (r *customerRepository) GetBySerialForUpdate(ctx context.Context, serial int64) (*models.Customer, error) {
	var customer models.Customer
	err := forUpdate(r.db.WithContext(ctx)).
		Where("serial_number = ?", serial).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetByPhone gets a company customer by phone number
func (r *customerRepository) GetByPhone(ctx context.Context, companyID uint, phone string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND phone_number = ?", companyID, phone).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListByCompany lists customers of a company with pagination
func (r *customerRepository) ListByCompany(ctx context.Context, companyID uint, offset, limit int) ([]*models.Customer, int64, error) {
	var customers []*models.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Customer{}).Where("company_id = ?", companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

// SerialsByCompany returns card serials of confirmed company customers
func (r *customerRepository) SerialsByCompany(ctx context.Context, companyID uint) ([]int64, error) {
	serials := []int64{}
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("company_id = ? AND confirmed = ?", companyID, true).
		Pluck("serial_number", &serials).Error
	return serials, err
}

// Update updates a customer
func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// SumCardCounters sums the current counters of every customer that has at
// least one scan matching q
func (r *customerRepository) SumCardCounters(ctx context.Context, q ScanQuery) (*CardCounterSums, error) {
	matching := q.Scope(r.db.WithContext(ctx).
		Model(&models.Scan{}).
		Select("scans.customer_id"))

	var sums CardCounterSums
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Select(
			"COALESCE(SUM(count_of_stamps), 0) AS stamps, "+
				"COALESCE(SUM(count_of_given_presents), 0) AS given_presents, "+
				"COALESCE(SUM(count_of_stored_presents), 0) AS stored_presents",
		).
		Where("id IN (?)", matching).
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	return &sums, nil
}
