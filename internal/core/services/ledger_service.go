package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/adapters/persistence/repositories"
	"loyalwallet/internal/core/cards"
	"loyalwallet/internal/core/domain"

	"gorm.io/gorm"
)

// LedgerService applies stamps and redemptions. Each operation locks the
// customer and employee rows, mutates them, appends to the scan ledger and
// queues the card refresh in one transaction.
type LedgerService struct {
	db        *gorm.DB
	presenter *cards.Presenter
	notifier  Notifier
	now       func() time.Time
}

// NewLedgerService creates a new ledger service. notifier may be nil.
func NewLedgerService(db *gorm.DB, presenter *cards.Presenter, notifier Notifier) *LedgerService {
	return &LedgerService{
		db:        db,
		presenter: presenter,
		notifier:  notifier,
		now:       time.Now,
	}
}

// LedgerResult is the state after a ledger operation
type LedgerResult struct {
	Customer   *models.Customer `json:"customer"`
	Employee   *models.Employee `json:"employee"`
	Scan       *models.Scan     `json:"scan"`
	MaxStamps  int              `json:"max_count_of_stamps"`
	RolledOver bool             `json:"rolled_over"`
}

// ledgerTx carries the repositories bound to one transaction
type ledgerTx struct {
	customers repositories.CustomerRepository
	employees repositories.EmployeeRepository
	companies repositories.CompanyRepository
	scans     repositories.ScanRepository
	outbox    repositories.OutboxRepository
}

func newLedgerTx(tx *gorm.DB) *ledgerTx {
	return &ledgerTx{
		customers: repositories.NewCustomerRepository(tx),
		employees: repositories.NewEmployeeRepository(tx),
		companies: repositories.NewCompanyRepository(tx),
		scans:     repositories.NewScanRepository(tx),
		outbox:    repositories.NewOutboxRepository(tx),
	}
}

// ScanCard stamps the card encoded in uri on behalf of employeeID.
// scopeCompanyID restricts the operator to one company; zero allows any.
func (s *LedgerService) ScanCard(ctx context.Context, scopeCompanyID uint, uri string, employeeID uint) (*LedgerResult, error) {
	serial, linkCompanyID, err := cards.ParseScanLink(strings.TrimSpace(uri))
	if err != nil {
		return nil, err
	}

	result := &LedgerResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := newLedgerTx(tx)

		customer, err := r.customers.GetBySerialForUpdate(ctx, serial)
		if err != nil {
			return notFound(err, fmt.Sprintf("customer with serial %d", serial))
		}
		if customer.CompanyID != linkCompanyID {
			return fmt.Errorf("card %d is not issued by company %d: %w", serial, linkCompanyID, domain.ErrInvalidReference)
		}
		if !customer.Confirmed {
			return fmt.Errorf("card %d is not activated yet: %w", serial, domain.ErrInvalidReference)
		}

		employee, company, err := s.lockOperator(ctx, r, customer, employeeID, scopeCompanyID)
		if err != nil {
			return err
		}

		rolledOver, err := customer.Card.Stamp(&employee.OperatorTally, company.MaxCountOfStamps, s.now())
		if err != nil {
			return err
		}

		scan, err := s.record(ctx, r, domain.ScanKindStamp, customer, employee)
		if err != nil {
			return err
		}

		holder := holderOf(customer, company)
		if err := enqueue(ctx, r.outbox, models.OutboxCardUpdate, company.ID, customer.SerialNumber, cardDelivery{
			TemplateKey: company.CardKey(),
			Card:        s.presenter.Update(holder),
		}); err != nil {
			return err
		}

		*result = LedgerResult{
			Customer:   customer,
			Employee:   employee,
			Scan:       scan,
			MaxStamps:  company.MaxCountOfStamps,
			RolledOver: rolledOver,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify()
	log.Printf("✅ Stamp: customer %d by employee %d (%s)",
		result.Customer.ID, result.Employee.ID, result.Customer.Card.Progress(result.MaxStamps))
	return result, nil
}

// TakePresent redeems one stored present of customerID, handed out by employeeID.
// With no stored present nothing is written and domain.ErrInsufficientRewards is returned.
func (s *LedgerService) TakePresent(ctx context.Context, scopeCompanyID, customerID, employeeID uint) (*LedgerResult, error) {
	result := &LedgerResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := newLedgerTx(tx)

		customer, err := r.customers.GetByIDForUpdate(ctx, customerID)
		if err != nil {
			return notFound(err, "customer")
		}
		if scopeCompanyID != 0 && customer.CompanyID != scopeCompanyID {
			return fmt.Errorf("customer %d: %w", customerID, domain.ErrNotFound)
		}

		employee, company, err := s.lockOperator(ctx, r, customer, employeeID, scopeCompanyID)
		if err != nil {
			return err
		}

		if err := customer.Card.TakePresent(&employee.OperatorTally); err != nil {
			return fmt.Errorf("customer %d: %w", customer.ID, err)
		}

		scan, err := s.record(ctx, r, domain.ScanKindPresent, customer, employee)
		if err != nil {
			return err
		}

		*result = LedgerResult{
			Customer:  customer,
			Employee:  employee,
			Scan:      scan,
			MaxStamps: company.MaxCountOfStamps,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Present given: customer %d by employee %d (%d left)",
		result.Customer.ID, result.Employee.ID, result.Customer.CountOfStoredPresents)
	return result, nil
}

// PushMessage queues a marketing push to the given cards of a company,
// or to every confirmed card when serials is empty
func (s *LedgerService) PushMessage(ctx context.Context, companyID uint, message string, serials []int64) (int, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return 0, fmt.Errorf("push message is empty: %w", domain.ErrValidation)
	}

	customers := repositories.NewCustomerRepository(s.db)
	owned, err := customers.SerialsByCompany(ctx, companyID)
	if err != nil {
		return 0, err
	}

	targets := owned
	if len(serials) > 0 {
		known := make(map[int64]bool, len(owned))
		for _, serial := range owned {
			known[serial] = true
		}
		targets = make([]int64, 0, len(serials))
		for _, serial := range serials {
			if !known[serial] {
				return 0, fmt.Errorf("card %d is not a confirmed card of company %d: %w", serial, companyID, domain.ErrInvalidReference)
			}
			targets = append(targets, serial)
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}

	err = enqueue(ctx, repositories.NewOutboxRepository(s.db), models.OutboxPushMessage, companyID, 0, cards.Push{
		Message: message,
		Serials: targets,
	})
	if err != nil {
		return 0, err
	}

	s.notify()
	log.Printf("✅ Push message queued for %d cards of company %d", len(targets), companyID)
	return len(targets), nil
}

// RefreshCard queues a push that makes the holder's device fetch the
// current pass again. Only confirmed cards of the company qualify.
func (s *LedgerService) RefreshCard(ctx context.Context, companyID uint, serial int64) error {
	owned, err := repositories.NewCustomerRepository(s.db).SerialsByCompany(ctx, companyID)
	if err != nil {
		return err
	}

	found := false
	for _, own := range owned {
		if own == serial {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("card %d of company %d: %w", serial, companyID, domain.ErrNotFound)
	}

	if err := enqueue(ctx, repositories.NewOutboxRepository(s.db), models.OutboxCardPush, companyID, serial, nil); err != nil {
		return err
	}
	s.notify()
	return nil
}

// lockOperator locks the employee and checks that customer, employee and
// caller all belong to the same company. Archived employees cannot operate.
func (s *LedgerService) lockOperator(ctx context.Context, r *ledgerTx, customer *models.Customer, employeeID, scopeCompanyID uint) (*models.Employee, *models.Company, error) {
	employee, err := r.employees.GetByIDForUpdate(ctx, employeeID)
	if err != nil {
		return nil, nil, notFound(err, fmt.Sprintf("employee %d", employeeID))
	}
	if scopeCompanyID != 0 && employee.CompanyID != scopeCompanyID {
		return nil, nil, fmt.Errorf("employee %d: %w", employeeID, domain.ErrNotFound)
	}
	if employee.CompanyID != customer.CompanyID {
		return nil, nil, fmt.Errorf("employee %d and customer %d belong to different companies: %w",
			employee.ID, customer.ID, domain.ErrInvalidReference)
	}
	if employee.Archived {
		return nil, nil, fmt.Errorf("employee %d is archived: %w", employee.ID, domain.ErrInvalidReference)
	}

	company, err := r.companies.GetByID(ctx, customer.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("customer %d has no company: %w", customer.ID, domain.ErrInvalidReference)
		}
		return nil, nil, err
	}
	return employee, company, nil
}

// record persists the mutated pair and appends the scan
func (s *LedgerService) record(ctx context.Context, r *ledgerTx, kind domain.ScanKind, customer *models.Customer, employee *models.Employee) (*models.Scan, error) {
	if err := r.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	if err := r.employees.Update(ctx, employee); err != nil {
		return nil, err
	}

	scan := &models.Scan{
		Kind:       kind,
		CompanyID:  customer.CompanyID,
		CustomerID: customer.ID,
		EmployeeID: employee.ID,
		LocationID: employee.LocationID,
		ScanDate:   s.now(),
	}
	if err := r.scans.Create(ctx, scan); err != nil {
		return nil, err
	}
	return scan, nil
}

func (s *LedgerService) notify() {
	if s.notifier != nil {
		s.notifier.Notify()
	}
}

func holderOf(customer *models.Customer, company *models.Company) cards.Holder {
	return cards.Holder{
		CustomerID: customer.ID,
		CompanyID:  company.ID,
		Serial:     customer.SerialNumber,
		Phone:      customer.PhoneNumber,
		Card:       customer.Card,
		MaxStamps:  company.MaxCountOfStamps,
	}
}
