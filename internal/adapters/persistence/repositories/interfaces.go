package repositories

import (
	"context"
	"time"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/core/domain"
)

// AccountRepository defines account repository interface
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByAccountID(ctx context.Context, accountID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// CompanyRepository defines company repository interface
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uint) (*models.Company, error)
	GetByName(ctx context.Context, name string) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id uint) error
}

// LocationRepository defines location repository interface
type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id uint) (*models.Location, error)
	GetByName(ctx context.Context, companyID uint, name string) (*models.Location, error)
	GetByAddress(ctx context.Context, companyID uint, address string) (*models.Location, error)
	ListByCompany(ctx context.Context, companyID uint) ([]*models.Location, error)
	IDsByName(ctx context.Context, companyID uint, name string) ([]uint, error)
	Update(ctx context.Context, location *models.Location) error
	Delete(ctx context.Context, id uint) error
}

// EmployeeRepository defines employee repository interface
type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, id uint) (*models.Employee, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Employee, error)
	GetByName(ctx context.Context, companyID uint, name, surname string) (*models.Employee, error)
	ListByCompany(ctx context.Context, companyID uint) ([]*models.Employee, error)
	Update(ctx context.Context, employee *models.Employee) error
	Delete(ctx context.Context, id uint) error
}

// CustomerRepository defines customer repository interface
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Customer, error)
	GetBySerialForUpdate(ctx context.Context, serial int64) (*models.Customer, error)
	GetByPhone(ctx context.Context, companyID uint, phone string) (*models.Customer, error)
	ListByCompany(ctx context.Context, companyID uint, offset, limit int) ([]*models.Customer, int64, error)
	SerialsByCompany(ctx context.Context, companyID uint) ([]int64, error)
	Update(ctx context.Context, customer *models.Customer) error
	SumCardCounters(ctx context.Context, q ScanQuery) (*CardCounterSums, error)
}

// ScanRepository is the append-only scan ledger
type ScanRepository interface {
	Create(ctx context.Context, scan *models.Scan) error
	Query(ctx context.Context, q ScanQuery) ([]*models.Scan, error)
	QueryPage(ctx context.Context, q ScanQuery, offset, limit int) ([]*models.Scan, int64, error)
	Count(ctx context.Context, q ScanQuery) (int64, error)
}

// CodeRepository defines confirmation code repository interface
type CodeRepository interface {
	Create(ctx context.Context, code *models.Code) error
	GetLatest(ctx context.Context, companyID uint, phone string) (*models.Code, error)
	DeleteByPhone(ctx context.Context, companyID uint, phone string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// OutboxRepository defines card outbox repository interface
type OutboxRepository interface {
	Create(ctx context.Context, entry *models.CardOutbox) error
	ListPending(ctx context.Context, maxAttempts, limit int) ([]*models.CardOutbox, error)
	MarkDelivered(ctx context.Context, id uint, at time.Time) error
	MarkFailed(ctx context.Context, id uint, reason string) error
}

// CardCounterSums holds current card counters summed over customers
type CardCounterSums struct {
	Stamps         int64 `gorm:"column:stamps"`
	GivenPresents  int64 `gorm:"column:given_presents"`
	StoredPresents int64 `gorm:"column:stored_presents"`
}
