package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger entry states. Exhausted is terminal: it is set in the same
// transaction that drives remaining_count to zero and is never left.
const (
	LedgerStatusPending   = "pending"
	LedgerStatusActive    = "active"
	LedgerStatusExhausted = "exhausted"
)

// Package is an immutable credit bundle template sold to customers.
type Package struct {
	BaseModel
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Count        int          `json:"count"`
	Price        float64      `json:"price"`
	Currency     string       `json:"currency"`
	DurationDays int          `json:"duration_days"`
	IsActive     bool         `gorm:"default:true" json:"is_active"`
	TimeWindows  []TimeWindow `gorm:"foreignKey:PackageID" json:"time_windows,omitempty"`
}

// TimeWindow is a recurring daily interval during which credit may be
// redeemed. Start and End are HH:mm strings; Start > End means the window
// wraps past midnight.
type TimeWindow struct {
	BaseModel
	PackageID     *uuid.UUID `gorm:"type:uuid;index" json:"-"`
	UserPackageID *uuid.UUID `gorm:"type:uuid;index" json:"-"`
	Position      int        `json:"position"`
	Start         string     `gorm:"column:start_clock" json:"start"`
	End           string     `gorm:"column:end_clock" json:"end"`
}

// UserPackage is a single grant of credit to a user: one purchase or one
// gift. remaining_count only ever decreases; the consumption history is
// append-only.
type UserPackage struct {
	BaseModel
	UserID       uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	User         *User      `json:"user,omitempty"`
	PackageID    *uuid.UUID `gorm:"type:uuid" json:"package_id"`
	Package      *Package   `json:"package,omitempty"`
	RestaurantID *uuid.UUID `gorm:"type:uuid" json:"restaurant_id"`
	OperatorID   *uuid.UUID `gorm:"type:uuid" json:"operator_id"`
	IsGift       bool       `json:"is_gift"`

	TotalCount     int        `json:"total_count"`
	RemainingCount int        `json:"remaining_count"`
	Status         string     `gorm:"index" json:"status"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	PurchasedAt    time.Time  `gorm:"index" json:"purchased_at"`

	TimeWindows []TimeWindow       `gorm:"foreignKey:UserPackageID" json:"time_windows,omitempty"`
	History     []ConsumptionEvent `gorm:"foreignKey:UserPackageID" json:"history,omitempty"`
}

// ConsumptionEvent is one history row on a ledger entry. All rows produced by
// a single redemption call share one RedeemLogID, even when the deduction
// crossed package boundaries.
type ConsumptionEvent struct {
	BaseModel
	UserPackageID uuid.UUID   `gorm:"type:uuid;index" json:"user_package_id"`
	RestaurantID  uuid.UUID   `gorm:"type:uuid;index" json:"restaurant_id"`
	Restaurant    *Restaurant `json:"restaurant,omitempty"`
	Count         int         `json:"count"`
	Flavor        string      `json:"flavor"`
	ConsumedAt    time.Time   `json:"consumed_at"`
	RedeemLogID   uuid.UUID   `gorm:"type:uuid;index" json:"redeem_log_id"`
}
