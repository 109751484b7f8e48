package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a lounge customer identified by phone number.
//
// The consumption OTP slot lives inline on the user row: a user holds at most
// one live code at a time, and issuing a new one overwrites the previous code
// and its binding. OtpVersion is bumped on every issuance so redemption can
// consume the code with a conditional update instead of a check-then-set.
type User struct {
	BaseModel
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `gorm:"uniqueIndex" json:"phone"`
	DisplayName  string `json:"display_name"`
	PasswordHash string `json:"-"`
	IsVerified   bool   `json:"is_verified"`

	ConsumptionOtp             *string    `json:"-"`
	ConsumptionOtpExpiresAt    *time.Time `json:"-"`
	ConsumptionOtpRestaurantID *uuid.UUID `gorm:"type:uuid" json:"-"`
	ConsumptionOtpCount        int        `json:"-"`
	ConsumptionOtpUsed         bool       `json:"-"`
	OtpVersion                 int        `json:"-"`

	Packages []UserPackage `json:"packages,omitempty"`
	Ratings  []Rating      `json:"ratings,omitempty"`
}

// SMSVerification keeps track of signup codes sent to users.
type SMSVerification struct {
	BaseModel
	Phone     string     `gorm:"index" json:"phone"`
	Code      string     `json:"code"`
	ExpiresAt time.Time  `json:"expires_at"`
	Verified  bool       `json:"verified"`
	UsedAt    *time.Time `json:"used_at"`
}
