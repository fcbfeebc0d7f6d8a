package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService runs the periodic jobs: card outbox retries and cleanup of
// expired pins and refresh tokens
type CronService struct {
	cron       *cron.Cron
	dispatcher *OutboxDispatcher
	activation *ActivationService
	auth       *AuthService
	schedule   string
}

// NewCronService creates the scheduler. schedule drives outbox delivery.
func NewCronService(dispatcher *OutboxDispatcher, activation *ActivationService, auth *AuthService, schedule string) *CronService {
	return &CronService{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		dispatcher: dispatcher,
		activation: activation,
		auth:       auth,
		schedule:   schedule,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.dispatchOutbox); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@every 5m", s.purgeCodes); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@daily", s.purgeRefreshTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("🚀 Cron service started [outbox: %s]", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 Cron service stopped")
}

func (s *CronService) dispatchOutbox() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.dispatcher.Dispatch(ctx); err != nil {
		log.Printf("❌ Scheduled card outbox dispatch failed: %v", err)
	}
}

func (s *CronService) purgeCodes() {
	removed, err := s.activation.PurgeExpiredCodes(context.Background())
	if err != nil {
		log.Printf("❌ Expired pin cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("✅ Removed %d expired pins", removed)
	}
}

func (s *CronService) purgeRefreshTokens() {
	removed, err := s.auth.PurgeExpiredTokens(context.Background())
	if err != nil {
		log.Printf("❌ Expired refresh token cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("✅ Removed %d expired refresh tokens", removed)
	}
}
