package config

import (
	"errors"
	"log"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/core/domain"
	"loyalwallet/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg SeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminAccount(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminAccount creates an Admin account with its own company.
// Development only; production admins are created out of band.
func (s *Seeder) seedAdminAccount() error {
	var count int64
	if err := s.db.Model(&models.Account{}).Where("role = ?", domain.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return errors.New("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	hashedPassword, err := password.Hash(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		company := &models.Company{
			Name:             "LoyalWallet",
			MaxCountOfStamps: domain.DefaultMaxCountOfStamps,
		}
		if err := tx.Create(company).Error; err != nil {
			return err
		}

		admin := &models.Account{
			Email:          s.cfg.AdminEmail,
			Password:       hashedPassword,
			Role:           string(domain.RoleAdmin),
			CompanyID:      company.ID,
			EmailConfirmed: true,
		}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}

		log.Printf("✅ Admin account created: %s", admin.Email)
		return nil
	})
}
