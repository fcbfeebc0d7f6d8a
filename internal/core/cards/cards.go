// Package cards renders customer and company state into the payloads the
// wallet provider understands. Nothing here performs I/O.
package cards

import (
	"fmt"
	"net/url"
	"strconv"

	"loyalwallet/internal/core/domain"
)

// Field keys on the card face
const (
	KeySerial = "H1"
	KeyStamps = "P1"
	KeyPhone  = "B1"
)

// Provider placeholders substituted on their side
const (
	LinkPlaceholder = "{link}"
	PinPlaceholder  = "{pin}"
)

// Default texts
const (
	CardReadyMessage = "Your loyalty card is ready " + LinkPlaceholder
	PinMessage       = "Your confirmation code " + PinPlaceholder
	PinLength        = 4
	stampsChangeMsg  = "your stamps %@"
)

// Holder is the customer side of a card
type Holder struct {
	CustomerID uint
	CompanyID  uint
	Serial     int64
	Phone      string
	Card       domain.Card
	MaxStamps  int
}

// Card is the pass body sent on create and update
type Card struct {
	NoSharing *bool              `json:"noSharing,omitempty"`
	Values    []domain.CardField `json:"values"`
	Barcode   *Barcode           `json:"barcode,omitempty"`
}

// Barcode is the QR code printed on the pass
type Barcode struct {
	Show          bool   `json:"show,omitempty"`
	ShowSignature bool   `json:"showSignature,omitempty"`
	Message       string `json:"message"`
	Signature     string `json:"signature,omitempty"`
	Format        string `json:"format,omitempty"`
	Encoding      string `json:"encoding,omitempty"`
}

// TemplateOptions are the branding choices a company makes for its cards
type TemplateOptions struct {
	CompanyName     string
	MaxStamps       int
	BackgroundColor int32
	TextColor       int32
	StripImage      string
}

// Template is the card template body
type Template struct {
	NoSharing   string             `json:"noSharing"`
	Limit       string             `json:"limit"`
	LogoText    string             `json:"logoText"`
	Description string             `json:"description"`
	Style       string             `json:"style"`
	TransitType string             `json:"transitType"`
	Values      []domain.CardField `json:"values"`
	Barcode     Barcode            `json:"barcode"`
	Colors      Colors             `json:"colors"`
	Images      Images             `json:"images"`
}

type Colors struct {
	Label      string `json:"label"`
	Background string `json:"background"`
	Foreground string `json:"foreground"`
}

type Images struct {
	Strip string `json:"strip"`
	Logo  string `json:"logo"`
}

// SMS asks the provider to text the card link to a phone
type SMS struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Push is a marketing message for a set of cards
type Push struct {
	Message string  `json:"message"`
	Serials []int64 `json:"serials"`
}

// Presenter builds card payloads. linkBase is the address encoded in the
// QR code; scanning apps post it back to the stamp endpoint.
type Presenter struct {
	linkBase string
}

// NewPresenter creates a presenter for the given scan link base
func NewPresenter(linkBase string) *Presenter {
	return &Presenter{linkBase: linkBase}
}

// Fields renders the card face for h
func (p *Presenter) Fields(h Holder) []domain.CardField {
	return []domain.CardField{
		{
			Key:              KeySerial,
			Label:            "Client serial number",
			Value:            strconv.FormatUint(uint64(h.CustomerID), 10),
			ForExistingCards: true,
		},
		{
			Key:       KeyStamps,
			Label:     "Stamps",
			Value:     h.Card.Progress(h.MaxStamps),
			ChangeMsg: stampsChangeMsg,
		},
		{
			Key:              KeyPhone,
			Label:            "Phone number",
			Value:            h.Phone,
			ForExistingCards: true,
		},
	}
}

// NewCard is the body for issuing a pass
func (p *Presenter) NewCard(h Holder) Card {
	noSharing := false
	return Card{
		NoSharing: &noSharing,
		Values:    p.Fields(h),
		Barcode:   &Barcode{Message: p.ScanLink(h.Serial, h.CompanyID)},
	}
}

// Update is the body for refreshing an issued pass
func (p *Presenter) Update(h Holder) Card {
	return Card{Values: p.Fields(h)}
}

// Template is the body for a company card template. New cards start at zero stamps.
func (p *Presenter) Template(opts TemplateOptions) Template {
	empty := domain.Card{}
	return Template{
		NoSharing:   "false",
		Limit:       "-empty-",
		LogoText:    opts.CompanyName,
		Description: "Loyalty card",
		Style:       "storeCard",
		TransitType: "-empty-",
		Values: []domain.CardField{{
			Key:       KeyStamps,
			Label:     "Stamps",
			Value:     empty.Progress(opts.MaxStamps),
			ChangeMsg: stampsChangeMsg,
		}},
		Barcode: Barcode{
			Show:          true,
			ShowSignature: true,
			Message:       "-serial-",
			Signature:     "-serial-",
			Format:        "QR",
			Encoding:      "iso-8859-1",
		},
		Colors: Colors{
			Label:      HTMLColor(opts.TextColor),
			Background: HTMLColor(opts.BackgroundColor),
			Foreground: "#00BBCC",
		},
		Images: Images{
			Strip: opts.StripImage,
			Logo:  "-empty-",
		},
	}
}

// ScanLink is the URI encoded in a card's QR code
func (p *Presenter) ScanLink(serial int64, companyID uint) string {
	q := url.Values{}
	q.Set("serial_number", strconv.FormatInt(serial, 10))
	q.Set("company_id", strconv.FormatUint(uint64(companyID), 10))
	return p.linkBase + "/?" + q.Encode()
}

// ParseScanLink extracts serial and company id from a scanned card URI
func ParseScanLink(uri string) (int64, uint, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return 0, 0, fmt.Errorf("card uri %q: %w", uri, domain.ErrValidation)
	}
	q := u.Query()

	serial, err := strconv.ParseInt(q.Get("serial_number"), 10, 64)
	if err != nil || serial <= 0 {
		return 0, 0, fmt.Errorf("invalid serial number %q: %w", q.Get("serial_number"), domain.ErrValidation)
	}
	companyID, err := strconv.ParseUint(q.Get("company_id"), 10, 32)
	if err != nil || companyID == 0 {
		return 0, 0, fmt.Errorf("invalid company id %q: %w", q.Get("company_id"), domain.ErrValidation)
	}
	return serial, uint(companyID), nil
}

// HTMLColor renders an ARGB integer as #RRGGBB, alpha dropped
func HTMLColor(argb int32) string {
	return fmt.Sprintf("#%06X", uint32(argb)&0xFFFFFF)
}
