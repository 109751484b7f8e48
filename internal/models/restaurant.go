package models

import "github.com/google/uuid"

// Restaurant is a lounge where credit can be redeemed.
type Restaurant struct {
	BaseModel
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Operators []Operator `json:"operators,omitempty"`
}

// Operator is a staff account scoped to a single restaurant.
type Operator struct {
	BaseModel
	RestaurantID uuid.UUID   `gorm:"type:uuid;index" json:"restaurant_id"`
	Restaurant   *Restaurant `json:"restaurant,omitempty"`
	Name         string      `json:"name"`
	Phone        string      `gorm:"uniqueIndex" json:"phone"`
	PasswordHash string      `json:"-"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
}
