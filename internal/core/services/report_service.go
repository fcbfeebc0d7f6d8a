package services

import (
	"context"
	"fmt"
	"strings"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/adapters/persistence/repositories"
	"loyalwallet/internal/core/domain"
)

// ReportService derives statistics from the scan ledger and current card
// state. It never writes.
type ReportService struct {
	scanRepo     repositories.ScanRepository
	customerRepo repositories.CustomerRepository
	employeeRepo repositories.EmployeeRepository
	locationRepo repositories.LocationRepository
}

// NewReportService creates a new report service
func NewReportService(
	scanRepo repositories.ScanRepository,
	customerRepo repositories.CustomerRepository,
	employeeRepo repositories.EmployeeRepository,
	locationRepo repositories.LocationRepository,
) *ReportService {
	return &ReportService{
		scanRepo:     scanRepo,
		customerRepo: customerRepo,
		employeeRepo: employeeRepo,
		locationRepo: locationRepo,
	}
}

// Summary bundles the company level counters
type Summary struct {
	CardsCount    int64 `json:"all_cards_count"`
	StampsCount   int64 `json:"all_stamps_count"`
	PresentsCount int64 `json:"all_presents_count"`
}

// AllCardsCount counts matching scans. Repeated scans of one card all count.
func (s *ReportService) AllCardsCount(ctx context.Context, filter domain.ScanFilter) (int64, error) {
	q, err := s.query(ctx, filter)
	if err != nil {
		return 0, err
	}
	return s.scanRepo.Count(ctx, q)
}

// AllStampsCount sums the current stamp progress of customers with a matching scan
func (s *ReportService) AllStampsCount(ctx context.Context, filter domain.ScanFilter) (int64, error) {
	sums, err := s.sums(ctx, filter)
	if err != nil {
		return 0, err
	}
	return sums.Stamps, nil
}

// AllPresentsCount sums the presents given to customers with a matching scan
func (s *ReportService) AllPresentsCount(ctx context.Context, filter domain.ScanFilter) (int64, error) {
	sums, err := s.sums(ctx, filter)
	if err != nil {
		return 0, err
	}
	return sums.GivenPresents, nil
}

// Summary computes all three company counters for one filter
func (s *ReportService) Summary(ctx context.Context, filter domain.ScanFilter) (*Summary, error) {
	q, err := s.query(ctx, filter)
	if err != nil {
		return nil, err
	}

	cardsCount, err := s.scanRepo.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	sums, err := s.customerRepo.SumCardCounters(ctx, q)
	if err != nil {
		return nil, err
	}

	return &Summary{
		CardsCount:    cardsCount,
		StampsCount:   sums.Stamps,
		PresentsCount: sums.GivenPresents,
	}, nil
}

// EmployeeCountOfStamps returns the stamps an employee has handed out, provided
// they scanned at least once inside the range
func (s *ReportService) EmployeeCountOfStamps(ctx context.Context, companyID, employeeID uint, r domain.DateRange) (int, error) {
	employee, err := s.activeEmployee(ctx, companyID, employeeID, r)
	if err != nil {
		return 0, err
	}
	return employee.OperatorTally.CountOfStamps, nil
}

// EmployeeCountOfPresents returns the presents an employee has handed out, provided
// they scanned at least once inside the range
func (s *ReportService) EmployeeCountOfPresents(ctx context.Context, companyID, employeeID uint, r domain.DateRange) (int, error) {
	employee, err := s.activeEmployee(ctx, companyID, employeeID, r)
	if err != nil {
		return 0, err
	}
	return employee.OperatorTally.CountOfPresents, nil
}

// Scans returns one page of matching scans, newest first
func (s *ReportService) Scans(ctx context.Context, filter domain.ScanFilter, offset, limit int) ([]*models.Scan, int64, error) {
	q, err := s.query(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.scanRepo.QueryPage(ctx, q, offset, limit)
}

func (s *ReportService) sums(ctx context.Context, filter domain.ScanFilter) (*repositories.CardCounterSums, error) {
	q, err := s.query(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.customerRepo.SumCardCounters(ctx, q)
}

func (s *ReportService) activeEmployee(ctx context.Context, companyID, employeeID uint, r domain.DateRange) (*models.Employee, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("start date after end date: %w", domain.ErrValidation)
	}

	employee, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, notFound(err, "employee")
	}
	if companyID != 0 && employee.CompanyID != companyID {
		return nil, fmt.Errorf("employee %d: %w", employeeID, domain.ErrNotFound)
	}

	count, err := s.scanRepo.Count(ctx, repositories.ScanQuery{
		CompanyID:  employee.CompanyID,
		EmployeeID: employee.ID,
		Range:      r,
	})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("no scans by employee %d in range: %w", employeeID, domain.ErrNotFound)
	}
	return employee, nil
}

// query turns a report filter into a scan query. A location name selects
// the scans taken at the company's locations of that name.
func (s *ReportService) query(ctx context.Context, filter domain.ScanFilter) (repositories.ScanQuery, error) {
	if !filter.Range.Valid() {
		return repositories.ScanQuery{}, fmt.Errorf("start date after end date: %w", domain.ErrValidation)
	}

	q := repositories.ScanQuery{
		CompanyID:  filter.CompanyID,
		EmployeeID: filter.EmployeeID,
		Range:      filter.Range,
	}

	if name := strings.TrimSpace(filter.LocationName); name != "" {
		ids, err := s.locationRepo.IDsByName(ctx, filter.CompanyID, name)
		if err != nil {
			return repositories.ScanQuery{}, err
		}
		if len(ids) == 0 {
			return repositories.ScanQuery{}, fmt.Errorf("location %s: %w", name, domain.ErrNotFound)
		}
		q.LocationIDs = ids
	}
	return q, nil
}
