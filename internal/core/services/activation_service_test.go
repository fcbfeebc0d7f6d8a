package services

import (
	"context"
	"testing"
	"time"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/core/cards"
	"loyalwallet/internal/core/domain"
	"loyalwallet/internal/pkg/serial"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActivation(t *testing.T, f *fixture, pins *fakePins) (*ActivationService, *countingNotifier) {
	t.Helper()
	gen, err := serial.NewGenerator(7)
	require.NoError(t, err)
	n := &countingNotifier{}
	s := NewActivationService(f.db, pins, presenter, gen, n)
	s.now = func() time.Time { return testNow }
	return s, n
}

func TestRegisterClient_NewPhoneGetsPin(t *testing.T) {
	f := newFixture(t)
	pins := &fakePins{pin: "1234"}
	activation, _ := newActivation(t, f, pins)

	outcome, err := activation.RegisterClient(context.Background(), f.company.ID, " +44 700 ")

	require.NoError(t, err)
	assert.Equal(t, RegistrationPinSent, outcome)
	require.Len(t, pins.sent, 1)

	var customer models.Customer
	require.NoError(t, f.db.Where("phone_number = ?", "+44700").First(&customer).Error)
	assert.False(t, customer.Confirmed)
	assert.Positive(t, customer.SerialNumber)
	assert.Equal(t, domain.Card{}, customer.Card)

	var code models.Code
	require.NoError(t, f.db.First(&code).Error)
	assert.Equal(t, pins.sent[0], code.ConfirmationCode)
	assert.True(t, code.ExpiresAt.Equal(testNow.Add(CodeTTL)))
	assert.Empty(t, f.outbox(t))
}

func TestRegisterClient_RetryReusesCustomer(t *testing.T) {
	f := newFixture(t)
	pins := &fakePins{pin: "1234"}
	activation, _ := newActivation(t, f, pins)

	_, err := activation.RegisterClient(context.Background(), f.company.ID, "+111")
	require.NoError(t, err)
	_, err = activation.RegisterClient(context.Background(), f.company.ID, "+111")
	require.NoError(t, err)

	assert.Equal(t, int64(1), f.count(t, &models.Customer{}))
	assert.Len(t, pins.sent, 2)
}

func TestRegisterClient_Validation(t *testing.T) {
	f := newFixture(t)
	activation, _ := newActivation(t, f, &fakePins{})

	_, err := activation.RegisterClient(context.Background(), f.company.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = activation.RegisterClient(context.Background(), f.company.ID, "+1234567890123456789012")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = activation.RegisterClient(context.Background(), 999, "+111")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterClient_PinProviderDown(t *testing.T) {
	f := newFixture(t)
	activation, _ := newActivation(t, f, &fakePins{sendErr: errProviderDown})

	_, err := activation.RegisterClient(context.Background(), f.company.ID, "+111")

	assert.ErrorIs(t, err, domain.ErrExternalService)
	assert.Zero(t, f.count(t, &models.Code{}))
}

func TestConfirmClient_IssuesCard(t *testing.T) {
	f := newFixture(t)
	pins := &fakePins{pin: "1234"}
	activation, notifier := newActivation(t, f, pins)
	_, err := activation.RegisterClient(context.Background(), f.company.ID, "+111")
	require.NoError(t, err)

	card, err := activation.ConfirmClient(context.Background(), f.company.ID, "+111", "1234")

	require.NoError(t, err)
	require.NotNil(t, card.Barcode)

	var customer models.Customer
	require.NoError(t, f.db.First(&customer).Error)
	assert.True(t, customer.Confirmed)
	assert.Equal(t, presenter.ScanLink(customer.SerialNumber, f.company.ID), card.Barcode.Message)
	assert.Zero(t, f.count(t, &models.Code{}))

	entries := f.outbox(t)
	require.Len(t, entries, 2)
	assert.Equal(t, models.OutboxCardCreate, entries[0].Kind)
	assert.Equal(t, models.OutboxCardSMS, entries[1].Kind)
	assert.Equal(t, customer.SerialNumber, entries[0].Serial)
	assert.Equal(t, int32(1), notifier.count())

	// a second registration resends the card link instead of a pin
	outcome, err := activation.RegisterClient(context.Background(), f.company.ID, "+111")
	require.NoError(t, err)
	assert.Equal(t, RegistrationCardSent, outcome)
	assert.Len(t, pins.sent, 1)
	assert.Len(t, f.outbox(t), 3)
}

func TestConfirmClient_WrongPin(t *testing.T) {
	f := newFixture(t)
	activation, _ := newActivation(t, f, &fakePins{pin: "1234"})
	_, err := activation.RegisterClient(context.Background(), f.company.ID, "+111")
	require.NoError(t, err)

	_, err = activation.ConfirmClient(context.Background(), f.company.ID, "+111", "9999")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int64(1), f.count(t, &models.Code{}))
	assert.Empty(t, f.outbox(t))
}

func TestConfirmClient_ExpiredOrMissingCode(t *testing.T) {
	f := newFixture(t)
	activation, _ := newActivation(t, f, &fakePins{pin: "1234"})

	_, err := activation.ConfirmClient(context.Background(), f.company.ID, "+111", "1234")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = activation.RegisterClient(context.Background(), f.company.ID, "+111")
	require.NoError(t, err)
	activation.now = func() time.Time { return testNow.Add(CodeTTL + time.Second) }

	_, err = activation.ConfirmClient(context.Background(), f.company.ID, "+111", "1234")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	purged, err := activation.PurgeExpiredCodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestConfirmClient_CardLinkMessage(t *testing.T) {
	f := newFixture(t)
	wallet := &fakeWallet{}
	activation, _ := newActivation(t, f, &fakePins{pin: "1234"})
	_, err := activation.RegisterClient(context.Background(), f.company.ID, "+111")
	require.NoError(t, err)
	_, err = activation.ConfirmClient(context.Background(), f.company.ID, "+111", "1234")
	require.NoError(t, err)

	_, err = newDispatcher(f, wallet, 3).Dispatch(context.Background())
	require.NoError(t, err)

	calls := wallet.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, f.company.CardKey(), calls[0].Key)
	assert.Equal(t, cards.CardReadyMessage, calls[1].Message)
	assert.Equal(t, "+111", calls[1].Phone)
}
