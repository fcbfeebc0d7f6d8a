package services

import (
	"context"
	"testing"
	"time"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/adapters/persistence/repositories"
	"loyalwallet/internal/config"
	"loyalwallet/internal/core/cards"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcher(f *fixture, wallet *fakeWallet, maxAttempts int) *OutboxDispatcher {
	return NewOutboxDispatcher(
		repositories.NewOutboxRepository(f.db),
		wallet,
		config.OutboxConfig{MaxAttempts: maxAttempts, BatchSize: 10},
		time.Second,
	)
}

func (f *fixture) enqueue(t *testing.T, kind string, serial int64, payload interface{}) {
	t.Helper()
	require.NoError(t, enqueue(context.Background(), repositories.NewOutboxRepository(f.db), kind, f.company.ID, serial, payload))
}

func TestDispatch_DeliversEveryKind(t *testing.T) {
	f := newFixture(t)
	wallet := &fakeWallet{}
	d := newDispatcher(f, wallet, 3)
	card := cards.Card{Values: presenter.Fields(cards.Holder{Serial: 1001, MaxStamps: 6})}

	f.enqueue(t, models.OutboxCardCreate, 1001, cardDelivery{TemplateKey: "company-1", Card: card})
	f.enqueue(t, models.OutboxCardSMS, 1001, cards.SMS{Phone: "+111", Message: cards.CardReadyMessage})
	f.enqueue(t, models.OutboxCardUpdate, 1001, cardDelivery{TemplateKey: "company-1", Card: card})
	f.enqueue(t, models.OutboxPushMessage, 0, cards.Push{Message: "hello", Serials: []int64{1001, 1002}})
	f.enqueue(t, models.OutboxCardPush, 1001, nil)

	n, err := d.Dispatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	calls := wallet.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, models.OutboxCardCreate, calls[0].Kind)
	assert.Equal(t, "company-1", calls[0].Key)
	assert.Equal(t, card, calls[0].Card)
	assert.Equal(t, walletCall{Kind: models.OutboxCardSMS, Serial: 1001, Phone: "+111", Message: cards.CardReadyMessage}, calls[1])
	assert.Equal(t, models.OutboxCardUpdate, calls[2].Kind)
	assert.Equal(t, []int64{1001, 1002}, calls[3].Serials)
	assert.Equal(t, walletCall{Kind: models.OutboxCardPush, Serial: 1001}, calls[4])

	for _, e := range f.outbox(t) {
		assert.NotNil(t, e.DeliveredAt, e.Kind)
	}

	n, err = d.Dispatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "delivered entries are not sent twice")
}

func TestDispatch_FailureHoldsBackLaterEntriesOfSameCard(t *testing.T) {
	f := newFixture(t)
	down := true
	wallet := &fakeWallet{fail: func(c walletCall) error {
		if down && c.Serial == 1001 {
			return errProviderDown
		}
		return nil
	}}
	d := newDispatcher(f, wallet, 5)

	f.enqueue(t, models.OutboxCardCreate, 1001, cardDelivery{TemplateKey: "k"})
	f.enqueue(t, models.OutboxCardUpdate, 1001, cardDelivery{TemplateKey: "k"})
	f.enqueue(t, models.OutboxCardUpdate, 1002, cardDelivery{TemplateKey: "k"})

	n, err := d.Dispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries := f.outbox(t)
	assert.Equal(t, 1, entries[0].Attempts)
	assert.Contains(t, entries[0].LastError, "provider down")
	assert.Nil(t, entries[0].DeliveredAt)
	assert.Zero(t, entries[1].Attempts, "held back, not attempted")
	assert.NotNil(t, entries[2].DeliveredAt)

	down = false
	n, err = d.Dispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	calls := wallet.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, models.OutboxCardCreate, calls[1].Kind, "create goes out before the update")
	assert.Equal(t, models.OutboxCardUpdate, calls[2].Kind)
}

func TestDispatch_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	wallet := &fakeWallet{fail: func(walletCall) error { return errProviderDown }}
	d := newDispatcher(f, wallet, 2)
	f.enqueue(t, models.OutboxCardSMS, 1001, cards.SMS{Phone: "+111"})

	for i := 0; i < 4; i++ {
		_, err := d.Dispatch(context.Background())
		require.NoError(t, err)
	}

	entries := f.outbox(t)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Attempts)
	assert.Nil(t, entries[0].DeliveredAt)
}

func TestDispatch_UnknownKindIsRecordedAsFailure(t *testing.T) {
	f := newFixture(t)
	d := newDispatcher(f, &fakeWallet{}, 3)
	f.enqueue(t, "fax", 1001, map[string]string{})

	n, err := d.Dispatch(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, f.outbox(t)[0].LastError, "unknown outbox kind")
}

func TestDispatcher_NotifyTriggersDelivery(t *testing.T) {
	f := newFixture(t)
	wallet := &fakeWallet{}
	d := newDispatcher(f, wallet, 3)
	d.Start()
	defer d.Stop()

	f.enqueue(t, models.OutboxCardSMS, 1001, cards.SMS{Phone: "+111"})
	d.Notify()
	d.Notify() // never blocks

	assert.Eventually(t, func() bool { return len(wallet.Calls()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestDispatcher_StopIsIdempotent(t *testing.T) {
	f := newFixture(t)
	d := newDispatcher(f, &fakeWallet{}, 3)
	d.Start()

	d.Stop()
	d.Stop()
}
