package services

import (
	"context"
	"errors"
	"fmt"

	"loyalwallet/internal/core/cards"
	"loyalwallet/internal/core/domain"

	"gorm.io/gorm"
)

// WalletProvider is the part of the wallet card provider the card outbox delivers to
type WalletProvider interface {
	CreateOrUpdateCard(ctx context.Context, serial int64, templateKey string, card cards.Card, create bool) error
	SendSms(ctx context.Context, serial int64, phone, message string) error
	SendPushMessage(ctx context.Context, message string, serials []int64) error
	PushUpdate(ctx context.Context, serial int64) error
	UpdateTemplate(ctx context.Context, templateKey string, tpl cards.Template) error
}

// PinProvider issues and checks phone activation pins
type PinProvider interface {
	SendPin(ctx context.Context, phone, smsText string, length int) (string, error)
	CheckPin(ctx context.Context, token, pin string) (bool, error)
}

// Notifier is told when new outbox entries have been committed
type Notifier interface {
	Notify()
}

// notFound turns a missing row into domain.ErrNotFound
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return err
}

// isDuplicate reports a unique constraint violation on any of the supported drivers
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
