package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/adapters/persistence/repositories"
	"loyalwallet/internal/config"
	"loyalwallet/internal/core/cards"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// cardDelivery is the outbox payload of card_create and card_update entries
type cardDelivery struct {
	TemplateKey string     `json:"template_key"`
	Card        cards.Card `json:"card"`
}

// enqueue writes an outbox entry through repo, normally inside the caller's transaction
func enqueue(ctx context.Context, repo repositories.OutboxRepository, kind string, companyID uint, serial int64, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return repo.Create(ctx, &models.CardOutbox{
		DeliveryKey: uuid.NewString(),
		Kind:        kind,
		CompanyID:   companyID,
		Serial:      serial,
		Payload:     datatypes.JSON(body),
	})
}

// ============================================================
// Outbox Dispatcher
// ============================================================

// OutboxDispatcher delivers committed card outbox entries to the wallet provider.
// Delivery failures are recorded on the entry and retried later; they never
// touch ledger state.
type OutboxDispatcher struct {
	outboxRepo  repositories.OutboxRepository
	wallet      WalletProvider
	maxAttempts int
	batchSize   int
	callTimeout time.Duration

	mu       sync.Mutex // one Dispatch at a time
	nudge    chan struct{}
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewOutboxDispatcher creates a dispatcher. callTimeout bounds every provider call.
func NewOutboxDispatcher(outboxRepo repositories.OutboxRepository, wallet WalletProvider, cfg config.OutboxConfig, callTimeout time.Duration) *OutboxDispatcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 50
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &OutboxDispatcher{
		outboxRepo:  outboxRepo,
		wallet:      wallet,
		maxAttempts: cfg.MaxAttempts,
		batchSize:   cfg.BatchSize,
		callTimeout: callTimeout,
		nudge:       make(chan struct{}, 1),
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Notify asks for a delivery round soon. Never blocks.
func (d *OutboxDispatcher) Notify() {
	select {
	case d.nudge <- struct{}{}:
	default:
	}
}

// Start runs a delivery round whenever Notify is called
func (d *OutboxDispatcher) Start() {
	log.Println("🚀 Card outbox dispatcher started")
	go func() {
		defer close(d.done)
		for {
			select {
			case <-d.nudge:
				if _, err := d.Dispatch(context.Background()); err != nil {
					log.Printf("❌ Card outbox dispatch failed: %v", err)
				}
			case <-d.stopChan:
				return
			}
		}
	}()
}

// Stop waits for the running round to finish
func (d *OutboxDispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
		<-d.done
		log.Println("🛑 Card outbox dispatcher stopped")
	})
}

// Dispatch delivers one batch of pending entries and returns how many succeeded
func (d *OutboxDispatcher) Dispatch(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries, err := d.outboxRepo.ListPending(ctx, d.maxAttempts, d.batchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	// a card's entries go out in order; a failure holds back the rest of that card
	held := make(map[int64]bool)
	for _, entry := range entries {
		if entry.Serial != 0 && held[entry.Serial] {
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
		err := d.deliver(callCtx, entry)
		cancel()

		if err != nil {
			log.Printf("❌ Card outbox %s (%s, serial %d) attempt %d failed: %v",
				entry.DeliveryKey, entry.Kind, entry.Serial, entry.Attempts+1, err)
			if entry.Attempts+1 >= d.maxAttempts {
				log.Printf("⚠️ Card outbox %s gave up after %d attempts", entry.DeliveryKey, d.maxAttempts)
			}
			if markErr := d.outboxRepo.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
				return delivered, markErr
			}
			if entry.Serial != 0 {
				held[entry.Serial] = true
			}
			continue
		}

		if err := d.outboxRepo.MarkDelivered(ctx, entry.ID, time.Now()); err != nil {
			return delivered, err
		}
		delivered++
	}

	if delivered > 0 {
		log.Printf("✅ Card outbox delivered %d/%d", delivered, len(entries))
	}
	return delivered, nil
}

func (d *OutboxDispatcher) deliver(ctx context.Context, entry *models.CardOutbox) error {
	switch entry.Kind {
	case models.OutboxCardCreate, models.OutboxCardUpdate:
		var p cardDelivery
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return d.wallet.CreateOrUpdateCard(ctx, entry.Serial, p.TemplateKey, p.Card, entry.Kind == models.OutboxCardCreate)

	case models.OutboxCardSMS:
		var p cards.SMS
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return d.wallet.SendSms(ctx, entry.Serial, p.Phone, p.Message)

	case models.OutboxPushMessage:
		var p cards.Push
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return d.wallet.SendPushMessage(ctx, p.Message, p.Serials)

	case models.OutboxCardPush:
		return d.wallet.PushUpdate(ctx, entry.Serial)

	default:
		return fmt.Errorf("unknown outbox kind %q", entry.Kind)
	}
}
