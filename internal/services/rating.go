package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/example/oblako/internal/models"
)

// RatingService links completed redemptions to satisfaction ratings. At most
// one rating can exist per (user, redeem log); the composite unique index is
// the authoritative guard, the lookup is just the friendly fast path.
type RatingService struct {
	db *gorm.DB
}

// NewRatingService constructs a RatingService.
func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// RatingParams describes one rating submission.
type RatingParams struct {
	UserID       uuid.UUID
	RestaurantID uuid.UUID
	OperatorID   *uuid.UUID
	PackageID    *uuid.UUID
	RedeemLogID  uuid.UUID
	Score        int
	IsGift       bool
}

// Submit records a rating for a redemption. The redeem log must appear in
// the caller's own consumption history, proving a real redemption happened.
// Two concurrent submissions can both pass the duplicate lookup; the loser's
// insert trips the unique index and is reported as ErrDuplicateRating, same
// as the sequential case.
func (s *RatingService) Submit(p RatingParams) (*models.Rating, error) {
	var existing models.Rating
	err := s.db.Where("user_id = ? AND redeem_log_id = ?", p.UserID, p.RedeemLogID).
		First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateRating
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var proof int64
	err = s.db.Model(&models.ConsumptionEvent{}).
		Joins("JOIN user_packages ON user_packages.id = consumption_events.user_package_id").
		Where("user_packages.user_id = ? AND consumption_events.redeem_log_id = ?", p.UserID, p.RedeemLogID).
		Count(&proof).Error
	if err != nil {
		return nil, err
	}
	if proof == 0 {
		return nil, ErrRedemptionNotFound
	}

	rating := models.Rating{
		UserID:       p.UserID,
		RestaurantID: p.RestaurantID,
		OperatorID:   p.OperatorID,
		PackageID:    p.PackageID,
		RedeemLogID:  p.RedeemLogID,
		Score:        p.Score,
		IsGift:       p.IsGift,
	}
	if err := s.db.Create(&rating).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateRating
		}
		return nil, err
	}
	return &rating, nil
}

// PendingConsumption is one unrated redemption in a user's history.
type PendingConsumption struct {
	RedeemLogID  uuid.UUID `json:"redeem_log_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Count        int       `json:"count"`
	ConsumedAt   time.Time `json:"consumed_at"`
}

// Pending lists a user's consumptions that have no rating yet: distinct
// redeem log ids in the user's history absent from the ratings table.
func (s *RatingService) Pending(userID uuid.UUID) ([]PendingConsumption, error) {
	var pending []PendingConsumption
	err := s.db.Model(&models.ConsumptionEvent{}).
		Select("consumption_events.redeem_log_id, consumption_events.restaurant_id, SUM(consumption_events.count) as count, MAX(consumption_events.consumed_at) as consumed_at").
		Joins("JOIN user_packages ON user_packages.id = consumption_events.user_package_id").
		Where("user_packages.user_id = ?", userID).
		Where("consumption_events.redeem_log_id NOT IN (?)",
			s.db.Model(&models.Rating{}).Select("redeem_log_id").Where("user_id = ?", userID)).
		Group("consumption_events.redeem_log_id, consumption_events.restaurant_id").
		Order("consumed_at desc").
		Scan(&pending).Error
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
