package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(f *fixture) (*LedgerService, *countingNotifier) {
	n := &countingNotifier{}
	s := NewLedgerService(f.db, presenter, n)
	s.now = func() time.Time { return testNow }
	return s, n
}

func TestScanCard_StampsCardAndRecordsScan(t *testing.T) {
	f := newFixture(t)
	ledger, notifier := newLedger(f)
	c := f.customer(t, "+111", 1001, domain.Card{})

	res, err := ledger.ScanCard(context.Background(), f.company.ID, presenter.ScanLink(1001, f.company.ID), f.barista.ID)

	require.NoError(t, err)
	assert.False(t, res.RolledOver)
	assert.Equal(t, 6, res.MaxStamps)
	assert.Equal(t, 1, res.Customer.CountOfStamps)

	stored := f.reloadCustomer(t, c.ID)
	assert.Equal(t, 1, stored.CountOfStamps)
	assert.Equal(t, 1, stored.CountOfPurchases)
	require.NotNil(t, stored.FirstTimePurchase)
	assert.True(t, stored.FirstTimePurchase.Equal(testNow))
	assert.Equal(t, 1, f.reloadEmployee(t, f.barista.ID).OperatorTally.CountOfStamps)

	var scans []models.Scan
	require.NoError(t, f.db.Find(&scans).Error)
	require.Len(t, scans, 1)
	assert.Equal(t, domain.ScanKindStamp, scans[0].Kind)
	assert.Equal(t, c.ID, scans[0].CustomerID)
	assert.Equal(t, f.centre.ID, scans[0].LocationID)

	entries := f.outbox(t)
	require.Len(t, entries, 1)
	assert.Equal(t, models.OutboxCardUpdate, entries[0].Kind)
	assert.Equal(t, int64(1001), entries[0].Serial)
	var p cardDelivery
	require.NoError(t, json.Unmarshal(entries[0].Payload, &p))
	assert.Equal(t, f.company.CardKey(), p.TemplateKey)
	assert.Equal(t, "1 / 6", p.Card.Values[1].Value)

	assert.Equal(t, int32(1), notifier.count())
}

func TestScanCard_SixStampsStoreOnePresent(t *testing.T) {
	f := newFixture(t)
	ledger, _ := newLedger(f)
	c := f.customer(t, "+111", 1001, domain.Card{})
	link := presenter.ScanLink(1001, f.company.ID)

	var last *LedgerResult
	for i := 0; i < 6; i++ {
		res, err := ledger.ScanCard(context.Background(), 0, link, f.barista.ID)
		require.NoError(t, err)
		last = res
	}

	assert.True(t, last.RolledOver)
	stored := f.reloadCustomer(t, c.ID)
	assert.Equal(t, 0, stored.CountOfStamps)
	assert.Equal(t, 1, stored.CountOfStoredPresents)
	assert.Equal(t, 6, stored.CountOfPurchases)
	assert.Equal(t, int64(6), f.count(t, &models.Scan{}))
	assert.Len(t, f.outbox(t), 6)
}

func TestScanCard_RejectsMalformedLink(t *testing.T) {
	f := newFixture(t)
	ledger, notifier := newLedger(f)

	_, err := ledger.ScanCard(context.Background(), 0, "https://cards.test/?serial_number=abc&company_id=1", f.barista.ID)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, notifier.count())
}

func TestScanCard_UnknownCardOrEmployee(t *testing.T) {
	f := newFixture(t)
	ledger, _ := newLedger(f)
	f.customer(t, "+111", 1001, domain.Card{})

	_, err := ledger.ScanCard(context.Background(), 0, presenter.ScanLink(999, f.company.ID), f.barista.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = ledger.ScanCard(context.Background(), 0, presenter.ScanLink(1001, f.company.ID), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Zero(t, f.count(t, &models.Scan{}))
}

func TestScanCard_CrossCompanyIsRejectedAndLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	ledger, notifier := newLedger(f)
	c := f.customer(t, "+111", 1001, domain.Card{CountOfStamps: 2})

	// employee of another company
	_, err := ledger.ScanCard(context.Background(), 0, presenter.ScanLink(1001, f.company.ID), f.outsider.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	// link naming the wrong company
	_, err = ledger.ScanCard(context.Background(), 0, presenter.ScanLink(1001, f.other.ID), f.barista.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	assert.Equal(t, 2, f.reloadCustomer(t, c.ID).CountOfStamps)
	assert.Zero(t, f.reloadEmployee(t, f.outsider.ID).OperatorTally.CountOfStamps)
	assert.Zero(t, f.count(t, &models.Scan{}))
	assert.Empty(t, f.outbox(t))
	assert.Zero(t, notifier.count())
}

func TestScanCard_RejectsInactiveCardOrArchivedEmployee(t *testing.T) {
	f := newFixture(t)
	ledger, notifier := newLedger(f)
	pending := &models.Customer{CompanyID: f.company.ID, PhoneNumber: "+333", SerialNumber: 1003}
	require.NoError(t, f.db.Create(pending).Error)
	c := f.customer(t, "+111", 1001, domain.Card{CountOfStamps: 2})

	// card whose pass was never issued
	_, err := ledger.ScanCard(context.Background(), f.company.ID, presenter.ScanLink(1003, f.company.ID), f.barista.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	// archived operator
	require.NoError(t, f.db.Model(f.waiter).Update("archived", true).Error)
	_, err = ledger.ScanCard(context.Background(), f.company.ID, presenter.ScanLink(1001, f.company.ID), f.waiter.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	assert.Zero(t, f.reloadCustomer(t, pending.ID).CountOfPurchases)
	assert.Equal(t, 2, f.reloadCustomer(t, c.ID).CountOfStamps)
	assert.Zero(t, f.count(t, &models.Scan{}))
	assert.Empty(t, f.outbox(t))
	assert.Zero(t, notifier.count())
}

func TestScanCard_ScopeHidesOtherCompanies(t *testing.T) {
	f := newFixture(t)
	ledger, _ := newLedger(f)
	f.customer(t, "+111", 1001, domain.Card{})

	_, err := ledger.ScanCard(context.Background(), f.other.ID, presenter.ScanLink(1001, f.company.ID), f.barista.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanCard_ConcurrentScansKeepEveryStamp(t *testing.T) {
	f := newFixture(t)
	ledger, _ := newLedger(f)
	c := f.customer(t, "+111", 1001, domain.Card{})
	link := presenter.ScanLink(1001, f.company.ID)

	const scans = 10
	var wg sync.WaitGroup
	errs := make(chan error, scans)
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			employee := f.barista.ID
			if i%2 == 1 {
				employee = f.waiter.ID
			}
			_, err := ledger.ScanCard(context.Background(), 0, link, employee)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored := f.reloadCustomer(t, c.ID)
	assert.Equal(t, scans, stored.CountOfPurchases)
	assert.Equal(t, scans, stored.CountOfStoredPresents*6+stored.CountOfStamps)
	assert.Equal(t, scans,
		f.reloadEmployee(t, f.barista.ID).OperatorTally.CountOfStamps+f.reloadEmployee(t, f.waiter.ID).OperatorTally.CountOfStamps)
	assert.Equal(t, int64(scans), f.count(t, &models.Scan{}))
}

func TestTakePresent_Redeems(t *testing.T) {
	f := newFixture(t)
	ledger, notifier := newLedger(f)
	c := f.customer(t, "+111", 1001, domain.Card{CountOfStoredPresents: 2, CountOfStamps: 3})

	res, err := ledger.TakePresent(context.Background(), f.company.ID, c.ID, f.waiter.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Customer.CountOfStoredPresents)
	stored := f.reloadCustomer(t, c.ID)
	assert.Equal(t, 1, stored.CountOfStoredPresents)
	assert.Equal(t, 1, stored.CountOfGivenPresents)
	assert.Equal(t, 3, stored.CountOfStamps)
	assert.Equal(t, 1, f.reloadEmployee(t, f.waiter.ID).OperatorTally.CountOfPresents)

	var scan models.Scan
	require.NoError(t, f.db.First(&scan).Error)
	assert.Equal(t, domain.ScanKindPresent, scan.Kind)
	assert.Equal(t, f.harbour.ID, scan.LocationID)

	assert.Empty(t, f.outbox(t))
	assert.Zero(t, notifier.count())
}

func TestTakePresent_WithoutStoredPresentChangesNothing(t *testing.T) {
	f := newFixture(t)
	ledger, _ := newLedger(f)
	c := f.customer(t, "+111", 1001, domain.Card{CountOfStamps: 5, CountOfPurchases: 5})

	_, err := ledger.TakePresent(context.Background(), 0, c.ID, f.barista.ID)

	assert.ErrorIs(t, err, domain.ErrInsufficientRewards)
	stored := f.reloadCustomer(t, c.ID)
	assert.Equal(t, 5, stored.CountOfStamps)
	assert.Zero(t, stored.CountOfGivenPresents)
	assert.Zero(t, f.reloadEmployee(t, f.barista.ID).OperatorTally.CountOfPresents)
	assert.Zero(t, f.count(t, &models.Scan{}))
}

func TestTakePresent_CrossCompanyEmployee(t *testing.T) {
	f := newFixture(t)
	ledger, _ := newLedger(f)
	c := f.customer(t, "+111", 1001, domain.Card{CountOfStoredPresents: 1})

	_, err := ledger.TakePresent(context.Background(), 0, c.ID, f.outsider.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidReference)
	assert.Equal(t, 1, f.reloadCustomer(t, c.ID).CountOfStoredPresents)
}

func TestPushMessage(t *testing.T) {
	f := newFixture(t)
	ledger, notifier := newLedger(f)
	f.customer(t, "+111", 1001, domain.Card{})
	f.customer(t, "+222", 1002, domain.Card{})
	unconfirmed := &models.Customer{CompanyID: f.company.ID, PhoneNumber: "+333", SerialNumber: 1003}
	require.NoError(t, f.db.Create(unconfirmed).Error)

	t.Run("empty message", func(t *testing.T) {
		_, err := ledger.PushMessage(context.Background(), f.company.ID, "  ", nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown or unconfirmed card", func(t *testing.T) {
		_, err := ledger.PushMessage(context.Background(), f.company.ID, "hi", []int64{1001, 1003})
		assert.ErrorIs(t, err, domain.ErrInvalidReference)
	})

	t.Run("all confirmed cards", func(t *testing.T) {
		n, err := ledger.PushMessage(context.Background(), f.company.ID, "Free cake today", nil)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		entries := f.outbox(t)
		require.Len(t, entries, 1)
		assert.Equal(t, models.OutboxPushMessage, entries[0].Kind)
		assert.Contains(t, string(entries[0].Payload), "Free cake today")
		assert.Equal(t, int32(1), notifier.count())
	})
}

func TestRefreshCard(t *testing.T) {
	f := newFixture(t)
	ledger, notifier := newLedger(f)
	f.customer(t, "+111", 1001, domain.Card{CountOfStamps: 2})
	require.NoError(t, f.db.Create(&models.Customer{CompanyID: f.company.ID, PhoneNumber: "+333", SerialNumber: 1003}).Error)

	err := ledger.RefreshCard(context.Background(), f.company.ID, 1003)
	assert.ErrorIs(t, err, domain.ErrNotFound, "unconfirmed card")

	err = ledger.RefreshCard(context.Background(), f.other.ID, 1001)
	assert.ErrorIs(t, err, domain.ErrNotFound, "card of another company")

	require.NoError(t, ledger.RefreshCard(context.Background(), f.company.ID, 1001))
	entries := f.outbox(t)
	require.Len(t, entries, 1)
	assert.Equal(t, models.OutboxCardPush, entries[0].Kind)
	assert.Equal(t, int64(1001), entries[0].Serial)
	assert.Equal(t, int32(1), notifier.count())
}
