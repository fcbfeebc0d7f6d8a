package domain

import "time"

// Role represents an account role in the system
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// DefaultMaxCountOfStamps is the stamp threshold a new company starts with
const DefaultMaxCountOfStamps = 6

// ScanKind distinguishes the ledger events written to the scan log
type ScanKind string

const (
	ScanKindStamp   ScanKind = "STAMP"
	ScanKindPresent ScanKind = "PRESENT"
)

// DateRange is an inclusive, optionally open-ended time window
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// Valid reports whether the range is well formed
func (r DateRange) Valid() bool {
	return r.Start == nil || r.End == nil || !r.End.Before(*r.Start)
}

// ScanFilter selects scan records for reporting
type ScanFilter struct {
	CompanyID    uint
	EmployeeID   uint
	LocationName string
	Range        DateRange
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// CardField is one labelled value rendered on a wallet card
type CardField struct {
	Key              string `json:"key"`
	Label            string `json:"label"`
	Value            string `json:"value"`
	ChangeMsg        string `json:"changeMsg,omitempty"`
	HideLabel        bool   `json:"hideLabel"`
	ForExistingCards bool   `json:"forExistingCards"`
}
