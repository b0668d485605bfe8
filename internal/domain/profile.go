package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// LocationSharing controls how much of a user's location is exposed.
type LocationSharing string

const (
	LocationOff     LocationSharing = "off"
	LocationCity    LocationSharing = "city"
	LocationPrecise LocationSharing = "precise"
)

func (l LocationSharing) IsValid() bool {
	switch l {
	case LocationOff, LocationCity, LocationPrecise:
		return true
	}
	return false
}

// SyntheticUserIDPrefix marks sample profiles produced by the discovery feed.
// No stored profile may use it.
const SyntheticUserIDPrefix = "sample-"

// IsSyntheticUserID reports whether id belongs to a sample profile.
func IsSyntheticUserID(id string) bool {
	return strings.HasPrefix(id, SyntheticUserIDPrefix)
}

type Profile struct {
	UserID          string          `json:"user_id" db:"user_id" validate:"required,max=128"`
	Name            string          `json:"name" db:"name" validate:"max=100"`
	Bio             string          `json:"bio" db:"bio" validate:"max=500"`
	City            string          `json:"city" db:"city" validate:"max=100"`
	Role            string          `json:"role" db:"role" validate:"max=100"`
	Interests       []string        `json:"interests" db:"interests" validate:"max=20,dive,max=50"`
	IsDiscoverable  bool            `json:"is_discoverable" db:"is_discoverable"`
	LocationSharing LocationSharing `json:"location_sharing" db:"location_sharing" validate:"required,oneof=off city precise"`
	WalletAddress   *string         `json:"wallet_address,omitempty" db:"wallet_address" validate:"omitempty,eth_wallet"`
	FarcasterHandle string          `json:"farcaster_handle,omitempty" db:"farcaster_handle" validate:"max=100"`
	TwitterHandle   string          `json:"twitter_handle,omitempty" db:"twitter_handle" validate:"max=100"`
	LinkedInHandle  string          `json:"linkedin_handle,omitempty" db:"linkedin_handle" validate:"max=100"`
	GitHubHandle    string          `json:"github_handle,omitempty" db:"github_handle" validate:"max=100"`
	TelegramHandle  string          `json:"telegram_handle,omitempty" db:"telegram_handle" validate:"max=100"`
	TalentHandle    string          `json:"talent_handle,omitempty" db:"talent_handle" validate:"max=100"`
	ProfileImage    string          `json:"profile_image,omitempty" db:"profile_image" validate:"omitempty,url,max=2048"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// HasWallet reports whether a wallet address is linked.
func (p *Profile) HasWallet() bool {
	return p != nil && p.WalletAddress != nil && *p.WalletAddress != ""
}

// Wallet returns the linked wallet or "".
func (p *Profile) Wallet() string {
	if !p.HasWallet() {
		return ""
	}
	return *p.WalletAddress
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("eth_wallet", func(fl validator.FieldLevel) bool {
		return IsValidWallet(fl.Field().String())
	})
	if err != nil {
		panic("domain: register eth_wallet validation: " + err.Error())
	}
	return v
}

// Validate checks a profile before it is written. Wallet addresses are
// lowercased in place.
func (p *Profile) Validate() error {
	if p == nil || strings.TrimSpace(p.UserID) == "" || IsSyntheticUserID(p.UserID) {
		return ErrInvalidUserID
	}
	if p.LocationSharing == "" {
		p.LocationSharing = LocationOff
	}
	// interests is NOT NULL in the store.
	if p.Interests == nil {
		p.Interests = []string{}
	}
	if !p.LocationSharing.IsValid() {
		return ErrInvalidLocationShare
	}
	if p.WalletAddress != nil {
		if *p.WalletAddress == "" {
			p.WalletAddress = nil
		} else {
			w, err := NormalizeWallet(*p.WalletAddress)
			if err != nil {
				return err
			}
			p.WalletAddress = &w
		}
	}
	if err := validate.Struct(p); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidationError wraps field-level validation failures and matches
// ErrInvalidInput under errors.Is.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Err.Error() }

func (e *ValidationError) Unwrap() []error { return []error{ErrInvalidInput, e.Err} }
