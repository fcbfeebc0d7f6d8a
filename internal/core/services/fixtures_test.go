package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/core/cards"
	"loyalwallet/internal/core/domain"
	"loyalwallet/internal/pkg/testdb"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	testNow   = time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC)
	presenter = cards.NewPresenter("https://cards.test")
)

// ============================================================
// Fakes
// ============================================================

type countingNotifier struct{ n int32 }

func (c *countingNotifier) Notify()      { atomic.AddInt32(&c.n, 1) }
func (c *countingNotifier) count() int32 { return atomic.LoadInt32(&c.n) }

type walletCall struct {
	Kind    string
	Serial  int64
	Key     string
	Card    cards.Card
	Phone   string
	Message string
	Serials []int64
}

type fakeWallet struct {
	mu    sync.Mutex
	calls []walletCall
	fail  func(call walletCall) error
}

func (w *fakeWallet) record(call walletCall) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail != nil {
		if err := w.fail(call); err != nil {
			return err
		}
	}
	w.calls = append(w.calls, call)
	return nil
}

func (w *fakeWallet) Calls() []walletCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]walletCall(nil), w.calls...)
}

func (w *fakeWallet) CreateOrUpdateCard(_ context.Context, serial int64, key string, card cards.Card, create bool) error {
	kind := models.OutboxCardUpdate
	if create {
		kind = models.OutboxCardCreate
	}
	return w.record(walletCall{Kind: kind, Serial: serial, Key: key, Card: card})
}

func (w *fakeWallet) SendSms(_ context.Context, serial int64, phone, message string) error {
	return w.record(walletCall{Kind: models.OutboxCardSMS, Serial: serial, Phone: phone, Message: message})
}

func (w *fakeWallet) SendPushMessage(_ context.Context, message string, serials []int64) error {
	return w.record(walletCall{Kind: models.OutboxPushMessage, Message: message, Serials: serials})
}

func (w *fakeWallet) PushUpdate(_ context.Context, serial int64) error {
	return w.record(walletCall{Kind: models.OutboxCardPush, Serial: serial})
}

func (w *fakeWallet) UpdateTemplate(_ context.Context, key string, tpl cards.Template) error {
	return w.record(walletCall{Kind: "template", Key: key, Message: tpl.LogoText})
}

var errProviderDown = fmt.Errorf("provider down: %w", domain.ErrExternalService)

type fakePins struct {
	sent    []string
	pin     string
	sendErr error
}

func (p *fakePins) SendPin(_ context.Context, phone, smsText string, length int) (string, error) {
	if p.sendErr != nil {
		return "", p.sendErr
	}
	token := "act-" + phone + "-" + string(rune('a'+len(p.sent)))
	p.sent = append(p.sent, token)
	return token, nil
}

func (p *fakePins) CheckPin(_ context.Context, token, pin string) (bool, error) {
	if len(p.sent) == 0 || token != p.sent[len(p.sent)-1] {
		return false, nil
	}
	return pin == p.pin, nil
}

// ============================================================
// Fixture
// ============================================================

type fixture struct {
	db       *gorm.DB
	company  *models.Company
	other    *models.Company
	centre   *models.Location
	harbour  *models.Location
	barista  *models.Employee
	waiter   *models.Employee
	outsider *models.Employee
}

// newFixture seeds two companies. The first has two locations with one
// employee each; the second has a single employee.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	f := &fixture{db: db}

	f.company = &models.Company{Name: "Coffee", MaxCountOfStamps: 6}
	f.other = &models.Company{Name: "Bakery", MaxCountOfStamps: 6}
	require.NoError(t, db.Create(f.company).Error)
	require.NoError(t, db.Create(f.other).Error)

	f.centre = &models.Location{CompanyID: f.company.ID, Name: "centre", Address: "Main st 1"}
	f.harbour = &models.Location{CompanyID: f.company.ID, Name: "harbour", Address: "Pier 4"}
	bakery := &models.Location{CompanyID: f.other.ID, Name: "bakery", Address: "Mill rd 2"}
	require.NoError(t, db.Create(f.centre).Error)
	require.NoError(t, db.Create(f.harbour).Error)
	require.NoError(t, db.Create(bakery).Error)

	f.barista = &models.Employee{CompanyID: f.company.ID, LocationID: f.centre.ID, Name: "Ann", Surname: "Lee"}
	f.waiter = &models.Employee{CompanyID: f.company.ID, LocationID: f.harbour.ID, Name: "Bob", Surname: "Ray"}
	f.outsider = &models.Employee{CompanyID: f.other.ID, LocationID: bakery.ID, Name: "Cid", Surname: "Moe"}
	require.NoError(t, db.Create(f.barista).Error)
	require.NoError(t, db.Create(f.waiter).Error)
	require.NoError(t, db.Create(f.outsider).Error)

	return f
}

func (f *fixture) customer(t *testing.T, phone string, serial int64, card domain.Card) *models.Customer {
	t.Helper()
	c := &models.Customer{
		CompanyID:    f.company.ID,
		PhoneNumber:  phone,
		SerialNumber: serial,
		Confirmed:    true,
		Card:         card,
	}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *fixture) scan(t *testing.T, c *models.Customer, e *models.Employee, kind domain.ScanKind, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.Scan{
		Kind:       kind,
		CompanyID:  c.CompanyID,
		CustomerID: c.ID,
		EmployeeID: e.ID,
		LocationID: e.LocationID,
		ScanDate:   at,
	}).Error)
}

func (f *fixture) reloadCustomer(t *testing.T, id uint) *models.Customer {
	t.Helper()
	var c models.Customer
	require.NoError(t, f.db.First(&c, id).Error)
	return &c
}

func (f *fixture) reloadEmployee(t *testing.T, id uint) *models.Employee {
	t.Helper()
	var e models.Employee
	require.NoError(t, f.db.First(&e, id).Error)
	return &e
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func (f *fixture) outbox(t *testing.T) []models.CardOutbox {
	t.Helper()
	var entries []models.CardOutbox
	require.NoError(t, f.db.Order("id ASC").Find(&entries).Error)
	return entries
}

func ptr(t time.Time) *time.Time { return &t }
