package models

import "github.com/google/uuid"

// Rating is a 1-5 satisfaction score tied to exactly one redemption. The
// composite unique index enforces at most one rating per (user, redeem log).
type Rating struct {
	BaseModel
	UserID       uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_ratings_user_redeem" json:"user_id"`
	RestaurantID uuid.UUID   `gorm:"type:uuid;index" json:"restaurant_id"`
	Restaurant   *Restaurant `json:"restaurant,omitempty"`
	OperatorID   *uuid.UUID  `gorm:"type:uuid" json:"operator_id"`
	PackageID    *uuid.UUID  `gorm:"type:uuid" json:"package_id"`
	RedeemLogID  uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_ratings_user_redeem" json:"redeem_log_id"`
	Score        int         `json:"score"`
	IsGift       bool        `json:"is_gift"`
}
