package repositories

import (
	"context"

	"loyalwallet/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// scanRepository implements ScanRepository interface.
// It only ever inserts and reads.
type scanRepository struct {
	db *gorm.DB
}

// NewScanRepository creates a new scan repository
func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{db: db}
}

// Create appends a scan; the database assigns its identity
func (r *scanRepository) Create(ctx context.Context, scan *models.Scan) error {
	return r.db.WithContext(ctx).Create(scan).Error
}

// Query returns every scan matching q
func (r *scanRepository) Query(ctx context.Context, q ScanQuery) ([]*models.Scan, error) {
	var scans []*models.Scan
	err := r.db.WithContext(ctx).
		Scopes(q.Scope).
		Order("scans.scan_date ASC, scans.id ASC").
		Find(&scans).Error
	return scans, err
}

// QueryPage returns one page of scans matching q, newest first
func (r *scanRepository) QueryPage(ctx context.Context, q ScanQuery, offset, limit int) ([]*models.Scan, int64, error) {
	var scans []*models.Scan
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Scan{}).Scopes(q.Scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Scopes(q.Scope).
		Order("scans.scan_date DESC, scans.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&scans).Error
	if err != nil {
		return nil, 0, err
	}
	return scans, total, nil
}

// Count counts scans matching q
func (r *scanRepository) Count(ctx context.Context, q ScanQuery) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Scan{}).Scopes(q.Scope).Count(&count).Error
	return count, err
}
