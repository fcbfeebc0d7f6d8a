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
	"loyalwallet/internal/pkg/serial"

	"gorm.io/gorm"
)

// CodeTTL is how long an activation pin stays redeemable
const CodeTTL = 15 * time.Minute

const maxPhoneLength = 20

// Registration outcomes
const (
	RegistrationPinSent  = "pin_sent"
	RegistrationCardSent = "card_sent"
)

// ActivationService signs customers up: a pin is texted to their phone and,
// once confirmed, their card is issued and its link texted to them
type ActivationService struct {
	db        *gorm.DB
	pins      PinProvider
	presenter *cards.Presenter
	serials   *serial.Generator
	notifier  Notifier
	now       func() time.Time
}

// NewActivationService creates a new activation service. notifier may be nil.
func NewActivationService(db *gorm.DB, pins PinProvider, presenter *cards.Presenter, serials *serial.Generator, notifier Notifier) *ActivationService {
	return &ActivationService{
		db:        db,
		pins:      pins,
		presenter: presenter,
		serials:   serials,
		notifier:  notifier,
		now:       time.Now,
	}
}

// RegisterClient starts or resumes sign up for phone at a company.
// Unknown and unconfirmed phones get a fresh pin; confirmed ones get their card link again.
func (s *ActivationService) RegisterClient(ctx context.Context, companyID uint, phone string) (string, error) {
	phone, err := normalizePhone(phone)
	if err != nil {
		return "", err
	}

	company, err := repositories.NewCompanyRepository(s.db).GetByID(ctx, companyID)
	if err != nil {
		return "", notFound(err, "company")
	}

	customers := repositories.NewCustomerRepository(s.db)
	customer, err := customers.GetByPhone(ctx, companyID, phone)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		customer = &models.Customer{
			CompanyID:    company.ID,
			PhoneNumber:  phone,
			SerialNumber: s.serials.Next(),
		}
		if err := customers.Create(ctx, customer); err != nil {
			if isDuplicate(err) {
				return "", fmt.Errorf("customer %s: %w", phone, domain.ErrDuplicateEntry)
			}
			return "", err
		}
		log.Printf("✅ Customer %d added to company %d", customer.ID, company.ID)

	case err != nil:
		return "", err

	case customer.Confirmed:
		if err := s.queueCardSMS(ctx, repositories.NewOutboxRepository(s.db), customer); err != nil {
			return "", err
		}
		s.notify()
		return RegistrationCardSent, nil
	}

	if err := s.sendPin(ctx, customer); err != nil {
		return "", err
	}
	return RegistrationPinSent, nil
}

// ConfirmClient checks the pin texted to phone. On success the customer is
// confirmed and their card issue and card SMS are queued. Returns the card issued.
func (s *ActivationService) ConfirmClient(ctx context.Context, companyID uint, phone, pin string) (*cards.Card, error) {
	phone, err := normalizePhone(phone)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(pin) == "" {
		return nil, fmt.Errorf("pin is required: %w", domain.ErrValidation)
	}

	code, err := repositories.NewCodeRepository(s.db).GetLatest(ctx, companyID, phone)
	if err != nil {
		return nil, notFound(err, "confirmation code")
	}
	if s.now().After(code.ExpiresAt) {
		return nil, fmt.Errorf("confirmation code expired: %w", domain.ErrNotFound)
	}

	ok, err := s.pins.CheckPin(ctx, code.ConfirmationCode, strings.TrimSpace(pin))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("wrong pin: %w", domain.ErrValidation)
	}

	var card cards.Card
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customers := repositories.NewCustomerRepository(tx)
		outbox := repositories.NewOutboxRepository(tx)

		customer, err := customers.GetByPhone(ctx, companyID, phone)
		if err != nil {
			return notFound(err, "customer")
		}
		company, err := repositories.NewCompanyRepository(tx).GetByID(ctx, companyID)
		if err != nil {
			return notFound(err, "company")
		}

		customer.Confirmed = true
		if err := customers.Update(ctx, customer); err != nil {
			return err
		}
		if err := repositories.NewCodeRepository(tx).DeleteByPhone(ctx, companyID, phone); err != nil {
			return err
		}

		card = s.presenter.NewCard(holderOf(customer, company))
		if err := enqueue(ctx, outbox, models.OutboxCardCreate, company.ID, customer.SerialNumber, cardDelivery{
			TemplateKey: company.CardKey(),
			Card:        card,
		}); err != nil {
			return err
		}
		return s.queueCardSMS(ctx, outbox, customer)
	})
	if err != nil {
		return nil, err
	}

	s.notify()
	log.Printf("✅ Customer %s confirmed at company %d", phone, companyID)
	return &card, nil
}

// PurgeExpiredCodes removes pins past their lifetime (cleanup job)
func (s *ActivationService) PurgeExpiredCodes(ctx context.Context) (int64, error) {
	return repositories.NewCodeRepository(s.db).DeleteExpired(ctx, s.now())
}

// sendPin texts a pin and stores the activation token to check it against
func (s *ActivationService) sendPin(ctx context.Context, customer *models.Customer) error {
	token, err := s.pins.SendPin(ctx, customer.PhoneNumber, cards.PinMessage, cards.PinLength)
	if err != nil {
		log.Printf("❌ Pin request failed for %s: %v", customer.PhoneNumber, err)
		return err
	}

	code := &models.Code{
		CompanyID:        customer.CompanyID,
		PhoneNumber:      customer.PhoneNumber,
		ConfirmationCode: token,
		ExpiresAt:        s.now().Add(CodeTTL),
	}
	if err := repositories.NewCodeRepository(s.db).Create(ctx, code); err != nil {
		return err
	}

	log.Printf("✅ Pin sent to %s", customer.PhoneNumber)
	return nil
}

func (s *ActivationService) queueCardSMS(ctx context.Context, outbox repositories.OutboxRepository, customer *models.Customer) error {
	return enqueue(ctx, outbox, models.OutboxCardSMS, customer.CompanyID, customer.SerialNumber, cards.SMS{
		Phone:   customer.PhoneNumber,
		Message: cards.CardReadyMessage,
	})
}

func (s *ActivationService) notify() {
	if s.notifier != nil {
		s.notifier.Notify()
	}
}

func normalizePhone(phone string) (string, error) {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if phone == "" || len(phone) > maxPhoneLength {
		return "", fmt.Errorf("phone number %q: %w", phone, domain.ErrValidation)
	}
	return phone, nil
}
