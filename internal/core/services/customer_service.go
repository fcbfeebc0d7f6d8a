package services

import (
	"context"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/adapters/persistence/repositories"
)

// CustomerService reads card holders. Card counters are changed only by LedgerService.
type CustomerService struct {
	customerRepo repositories.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repositories.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// List lists company customers with pagination
func (s *CustomerService) List(ctx context.Context, companyID uint, offset, limit int) ([]*models.Customer, int64, error) {
	return s.customerRepo.ListByCompany(ctx, companyID, offset, limit)
}

// GetByPhone gets a company customer by phone number
func (s *CustomerService) GetByPhone(ctx context.Context, companyID uint, phone string) (*models.Customer, error) {
	normalized, err := normalizePhone(phone)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByPhone(ctx, companyID, normalized)
	if err != nil {
		return nil, notFound(err, "customer "+phone)
	}
	return customer, nil
}
