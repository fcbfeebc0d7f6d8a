package repositories

import (
	"loyalwallet/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScanQuery selects scan rows. Zero values are ignored, except that a
// non-nil empty LocationIDs matches nothing.
type ScanQuery struct {
	CompanyID   uint
	EmployeeID  uint
	CustomerID  uint
	LocationIDs []uint
	Kind        domain.ScanKind
	Range       domain.DateRange
}

// Scope applies the query to a statement over the scans table
func (q ScanQuery) Scope(db *gorm.DB) *gorm.DB {
	if q.CompanyID != 0 {
		db = db.Where("scans.company_id = ?", q.CompanyID)
	}
	if q.EmployeeID != 0 {
		db = db.Where("scans.employee_id = ?", q.EmployeeID)
	}
	if q.CustomerID != 0 {
		db = db.Where("scans.customer_id = ?", q.CustomerID)
	}
	if q.LocationIDs != nil {
		if len(q.LocationIDs) == 0 {
			return db.Where("1 = 0")
		}
		db = db.Where("scans.location_id IN ?", q.LocationIDs)
	}
	if q.Kind != "" {
		db = db.Where("scans.kind = ?", q.Kind)
	}
	if q.Range.Start != nil {
		db = db.Where("scans.scan_date >= ?", *q.Range.Start)
	}
	if q.Range.End != nil {
		db = db.Where("scans.scan_date <= ?", *q.Range.End)
	}
	return db
}

// forUpdate takes a row lock where the dialect supports it.
// SQLite serializes writers on its own.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
