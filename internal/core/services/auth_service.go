package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"loyalwallet/internal/adapters/persistence/models"
	"loyalwallet/internal/adapters/persistence/repositories"
	"loyalwallet/internal/config"
	"loyalwallet/internal/core/domain"
	"loyalwallet/internal/pkg/jwt"
	"loyalwallet/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	db               *gorm.DB
	accountRepo      repositories.AccountRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	db *gorm.DB,
	accountRepo repositories.AccountRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		db:               db,
		accountRepo:      accountRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Account      *models.AccountResponse `json:"account"`
	AccessToken  string                  `json:"access_token"`
	RefreshToken string                  `json:"refresh_token"`
}

// RegisterResult is a fresh account awaiting email confirmation
type RegisterResult struct {
	Account           *models.AccountResponse `json:"account"`
	ConfirmationToken string                  `json:"-"`
}

// Register creates a company together with its owner account.
// The account can log in once the email confirmation token is redeemed.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("email %q: %w", input.Email, domain.ErrValidation)
	}
	if !password.ValidatePassword(input.Password) {
		return nil, fmt.Errorf("password must be at least %d characters: %w", password.MinLength, domain.ErrValidation)
	}

	// 1. Check if email already exists
	exists, err := s.accountRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("email %s: %w", email, domain.ErrDuplicateEntry)
	}

	// 2. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	confirmationToken := uuid.NewString()
	account := &models.Account{
		Email:             email,
		Password:          hashedPassword,
		Role:              string(domain.RoleUser),
		ConfirmationToken: confirmationToken,
	}

	// 3. Create company and account together
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company := &models.Company{
			Name:             strings.TrimSpace(input.CompanyName),
			MaxCountOfStamps: domain.DefaultMaxCountOfStamps,
		}
		if err := repositories.NewCompanyRepository(tx).Create(ctx, company); err != nil {
			return err
		}
		account.CompanyID = company.ID
		return repositories.NewAccountRepository(tx).Create(ctx, account)
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("email %s: %w", email, domain.ErrDuplicateEntry)
		}
		return nil, err
	}

	// Email delivery is external; the token is logged for the mailer to pick up
	log.Printf("✅ Account registered: %s (company %d), confirmation token %s", account.Email, account.CompanyID, confirmationToken)

	return &RegisterResult{
		Account:           account.ToResponse(),
		ConfirmationToken: confirmationToken,
	}, nil
}

// ConfirmEmail redeems the confirmation token sent after registration
func (s *AuthService) ConfirmEmail(ctx context.Context, accountID uint, token string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return notFound(err, "account")
	}
	if account.EmailConfirmed {
		return nil
	}
	if token == "" || account.ConfirmationToken != token {
		return domain.ErrTokenInvalid
	}

	account.EmailConfirmed = true
	account.ConfirmationToken = ""
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	log.Printf("✅ Email confirmed: %s", account.Email)
	return nil
}

// Login authenticates an account
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find account by email
	account, err := s.accountRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify password
	if !password.Verify(input.Password, account.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Email must be confirmed
	if !account.EmailConfirmed {
		return nil, domain.ErrEmailNotConfirmed
	}

	// 4. Issue tokens
	response, err := s.issue(ctx, account)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Account logged in: %s", account.Email)
	return response, nil
}

// RefreshToken refreshes the access token using refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	// 2. Find token in DB by hash
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	// 3. Check revoked / expired
	if storedToken.IsRevoked() {
		return nil, domain.ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, domain.ErrTokenExpired
	}
	if storedToken.AccountID != claims.AccountID {
		return nil, domain.ErrTokenInvalid
	}

	// 4. Get account
	account, err := s.accountRepo.GetByID(ctx, claims.AccountID)
	if err != nil {
		return nil, notFound(err, "account")
	}

	// 5. Revoke old refresh token (Token Rotation)
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	// 6. Issue new tokens
	response, err := s.issue(ctx, account)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for account: %s", account.Email)
	return response, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
		return err
	}

	log.Printf("✅ Account logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for an account
func (s *AuthService) LogoutAll(ctx context.Context, accountID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByAccountID(ctx, accountID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for account ID: %d", accountID)
	return nil
}

// ChangePassword changes an account password and signs out every session
func (s *AuthService) ChangePassword(ctx context.Context, accountID uint, input *ChangePasswordInput) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return notFound(err, "account")
	}

	// Verify old password
	if !password.Verify(input.OldPassword, account.Password) {
		return domain.ErrInvalidCredentials
	}

	// Validate new password
	if !password.ValidatePassword(input.NewPassword) {
		return fmt.Errorf("new password must be at least %d characters: %w", password.MinLength, domain.ErrValidation)
	}

	hashedPassword, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	account.Password = hashedPassword
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return err
	}
	return s.refreshTokenRepo.RevokeAllByAccountID(ctx, accountID)
}

// GetAccount gets an account by ID
func (s *AuthService) GetAccount(ctx context.Context, accountID uint) (*models.AccountResponse, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, notFound(err, "account")
	}
	return account.ToResponse(), nil
}

// PurgeExpiredTokens removes expired refresh tokens (cleanup job)
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.refreshTokenRepo.DeleteExpired(ctx)
}

// issue generates and stores a token pair for the account
func (s *AuthService) issue(ctx context.Context, account *models.Account) (*AuthResponse, error) {
	tokens, err := s.generateTokens(account)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, account.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	return &AuthResponse{
		Account:      account.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(account *models.Account) (*domain.TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		account.ID,
		account.CompanyID,
		account.Email,
		account.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		account.ID,
		uuid.NewString(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token hash in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, accountID uint, refreshToken string) error {
	token := &models.RefreshToken{
		AccountID: accountID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	return s.refreshTokenRepo.Create(ctx, token)
}
