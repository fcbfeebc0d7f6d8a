package models

import (
	"strconv"
	"time"

	"loyalwallet/internal/core/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================
// Auth Tables
// ============================================================

// Account represents accounts table (company owners and admins)
type Account struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Email             string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password          string         `gorm:"size:255;not null" json:"-"`
	Role              string         `gorm:"size:20;default:'User'" json:"role"`
	CompanyID         uint           `gorm:"index;not null" json:"company_id"`
	EmailConfirmed    bool           `gorm:"default:false" json:"email_confirmed"`
	ConfirmationToken string         `gorm:"size:64" json:"-"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	Company           *Company       `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}

// AccountResponse DTO
type AccountResponse struct {
	ID             uint      `json:"id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	CompanyID      uint      `json:"company_id"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
}

func (a *Account) ToResponse() *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Email:          a.Email,
		Role:           a.Role,
		CompanyID:      a.CompanyID,
		EmailConfirmed: a.EmailConfirmed,
		CreatedAt:      a.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AccountID uint       `gorm:"index;not null" json:"account_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Loyalty Tables
// ============================================================

// Company is a subscribing business
type Company struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"size:100;index" json:"name"`
	PhoneNumber      string         `gorm:"size:20" json:"phone_number"`
	InstagramName    string         `gorm:"size:100" json:"instagram_name"`
	MaxCountOfStamps int            `gorm:"not null;default:6" json:"max_count_of_stamps"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}

// CardKey is the wallet provider template id of the company's cards.
// It must survive renames, so it is derived from the primary key.
func (c *Company) CardKey() string {
	return "company-" + strconv.FormatUint(uint64(c.ID), 10)
}

// Location is a company outlet
type Location struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CompanyID uint           `gorm:"index;not null" json:"company_id"`
	Name      string         `gorm:"size:100;index" json:"name"`
	Address   string         `gorm:"size:100;not null" json:"address"`
	PayUpDate *time.Time     `json:"pay_up_date"`
	Archived  bool           `gorm:"default:false" json:"archived"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Location) TableName() string {
	return "locations"
}

// Employee operates the scanner at a location
type Employee struct {
	ID                   uint   `gorm:"primaryKey" json:"id"`
	CompanyID            uint   `gorm:"index;not null" json:"company_id"`
	LocationID           uint   `gorm:"index;not null" json:"location_id"`
	Name                 string `gorm:"size:100;not null" json:"name"`
	Surname              string `gorm:"size:100;not null" json:"surname"`
	Email                string `gorm:"size:100" json:"email"`
	Position             string `gorm:"size:100" json:"position"`
	Archived             bool   `gorm:"default:false" json:"archived"`
	domain.OperatorTally `gorm:"embedded"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
	Location             *Location      `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}

// Customer holds a loyalty card
type Customer struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CompanyID    uint   `gorm:"not null;uniqueIndex:idx_customer_company_phone" json:"company_id"`
	PhoneNumber  string `gorm:"size:20;not null;uniqueIndex:idx_customer_company_phone" json:"phone_number"`
	SerialNumber int64  `gorm:"uniqueIndex;not null" json:"serial_number"`
	Confirmed    bool   `gorm:"default:false" json:"confirmed"`
	domain.Card  `gorm:"embedded"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}

// Scan is an immutable ledger entry. Rows are never updated or deleted.
type Scan struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Kind       domain.ScanKind `gorm:"size:10;not null;default:'STAMP'" json:"kind"`
	CompanyID  uint            `gorm:"not null;index:idx_scans_company_date" json:"company_id"`
	CustomerID uint            `gorm:"not null;index" json:"customer_id"`
	EmployeeID uint            `gorm:"not null;index:idx_scans_employee_date" json:"employee_id"`
	LocationID uint            `gorm:"index" json:"location_id"`
	ScanDate   time.Time       `gorm:"not null;index:idx_scans_company_date;index:idx_scans_employee_date" json:"scan_date"`
}

func (Scan) TableName() string {
	return "scans"
}

// Code is a pending phone confirmation issued by the activation provider
type Code struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CompanyID        uint      `gorm:"not null;index:idx_codes_company_phone" json:"company_id"`
	PhoneNumber      string    `gorm:"size:20;not null;index:idx_codes_company_phone" json:"phone_number"`
	ConfirmationCode string    `gorm:"size:255" json:"-"`
	ExpiresAt        time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Code) TableName() string {
	return "codes"
}

func (c *Code) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// ============================================================
// Card Outbox
// ============================================================

// Outbox kinds
const (
	OutboxCardUpdate  = "card_update"
	OutboxCardCreate  = "card_create"
	OutboxCardSMS     = "card_sms"
	OutboxPushMessage = "push_message"
	OutboxCardPush    = "card_push"
)

// CardOutbox is a pending delivery to the wallet provider, written in the
// same transaction as the ledger change it reflects
type CardOutbox struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	DeliveryKey string         `gorm:"size:36;uniqueIndex;not null" json:"delivery_key"`
	Kind        string         `gorm:"size:20;not null" json:"kind"`
	CompanyID   uint           `gorm:"index" json:"company_id"`
	Serial      int64          `gorm:"index" json:"serial"`
	Payload     datatypes.JSON `json:"payload"`
	Attempts    int            `gorm:"default:0" json:"attempts"`
	LastError   string         `gorm:"type:text" json:"last_error"`
	DeliveredAt *time.Time     `gorm:"index" json:"delivered_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CardOutbox) TableName() string {
	return "card_outbox"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Company{},
		&Account{},
		&RefreshToken{},
		&Location{},
		&Employee{},
		&Customer{},
		&Scan{},
		&Code{},
		&CardOutbox{},
	)
}
