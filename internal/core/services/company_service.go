package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/adapters/persistence/repositories"
	"loyalwallet/internal/core/cards"
	"loyalwallet/internal/core/domain"
)

// CompanyService manages subscribing companies and their card branding
type CompanyService struct {
	companyRepo repositories.CompanyRepository
	presenter   *cards.Presenter
	wallet      WalletProvider
}

// NewCompanyService creates a new company service
func NewCompanyService(companyRepo repositories.CompanyRepository, presenter *cards.Presenter, wallet WalletProvider) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		presenter:   presenter,
		wallet:      wallet,
	}
}

// UpdateCompanyInput represents company settings editable by its owner
type UpdateCompanyInput struct {
	Name             string `json:"name"`
	PhoneNumber      string `json:"phone_number"`
	InstagramName    string `json:"instagram_name"`
	MaxCountOfStamps int    `json:"max_count_of_stamps"`
}

// CardTemplateInput represents card branding options
type CardTemplateInput struct {
	BackgroundColor int32  `json:"background_color"`
	TextColor       int32  `json:"text_color"`
	StripImage      string `json:"strip_image"`
}

// List lists all companies
func (s *CompanyService) List(ctx context.Context) ([]*models.Company, error) {
	return s.companyRepo.List(ctx)
}

// GetByID gets a company by ID
func (s *CompanyService) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "company")
	}
	return company, nil
}

// GetByName gets a company by name
func (s *CompanyService) GetByName(ctx context.Context, name string) (*models.Company, error) {
	company, err := s.companyRepo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, notFound(err, "company "+name)
	}
	return company, nil
}

// Update changes company settings. The stamp threshold must stay positive.
func (s *CompanyService) Update(ctx context.Context, id uint, input *UpdateCompanyInput) (*models.Company, error) {
	if input.MaxCountOfStamps < 1 {
		return nil, fmt.Errorf("max count of stamps must be at least 1: %w", domain.ErrValidation)
	}

	company, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	company.Name = strings.TrimSpace(input.Name)
	company.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	company.InstagramName = strings.TrimSpace(input.InstagramName)
	company.MaxCountOfStamps = input.MaxCountOfStamps

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}

	log.Printf("✅ Company %d updated (max stamps %d)", company.ID, company.MaxCountOfStamps)
	return company, nil
}

// Delete soft deletes a company
func (s *CompanyService) Delete(ctx context.Context, id uint) error {
	if err := s.companyRepo.Delete(ctx, id); err != nil {
		return notFound(err, "company")
	}
	log.Printf("✅ Company %d deleted", id)
	return nil
}

// UpdateCardTemplate pushes new card branding to the wallet provider.
// Nothing is stored locally, so a provider failure is returned to the caller.
func (s *CompanyService) UpdateCardTemplate(ctx context.Context, id uint, input *CardTemplateInput) (*cards.Template, error) {
	company, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tpl := s.presenter.Template(cards.TemplateOptions{
		CompanyName:     company.Name,
		MaxStamps:       company.MaxCountOfStamps,
		BackgroundColor: input.BackgroundColor,
		TextColor:       input.TextColor,
		StripImage:      input.StripImage,
	})

	if err := s.wallet.UpdateTemplate(ctx, company.CardKey(), tpl); err != nil {
		log.Printf("❌ Card template update failed for company %d: %v", company.ID, err)
		return nil, err
	}

	return &tpl, nil
}
