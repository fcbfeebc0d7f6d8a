package repositories

import (
	"context"
	"time"

	"loyalwallet/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// outboxRepository implements OutboxRepository interface
type outboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new card outbox repository
func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

// Create queues a delivery
func (r *outboxRepository) Create(ctx context.Context, entry *models.CardOutbox) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListPending lists undelivered entries that still have attempts left, in insertion order
func (r *outboxRepository) ListPending(ctx context.Context, maxAttempts, limit int) ([]*models.CardOutbox, error) {
	var entries []*models.CardOutbox
	err := r.db.WithContext(ctx).
		Where("delivered_at IS NULL AND attempts < ?", maxAttempts).
		Order("id ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// MarkDelivered stamps an entry as delivered
func (r *outboxRepository) MarkDelivered(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.CardOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"delivered_at": at,
			"last_error":   "",
		}).Error
}

// MarkFailed records a failed attempt
func (r *outboxRepository) MarkFailed(ctx context.Context, id uint, reason string) error {
	return r.db.WithContext(ctx).
		Model(&models.CardOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
		}).Error
}
