package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/oblako/internal/models"
)

// RedemptionService consumes credit against a live OTP and grants gift
// credit. Deduction order is FIFO by purchase time; gift entries sit in the
// same pool as purchased credit.
type RedemptionService struct {
	db        *gorm.DB
	otpLength int
}

// NewRedemptionService constructs a RedemptionService.
func NewRedemptionService(db *gorm.DB, otpLength int) *RedemptionService {
	if otpLength <= 0 {
		otpLength = 5
	}
	return &RedemptionService{db: db, otpLength: otpLength}
}

// RedeemParams describes one redemption attempt.
//
// RestaurantID is the acting restaurant derived from the caller's
// authenticated scope; when nil-valued the restaurant bound at issuance is
// adopted (self-service verification). EnforceWindows is an explicit policy
// choice: the operator path passes false because the operator supervises the
// consumption in person, the self-service path passes true.
type RedeemParams struct {
	Phone          string
	Code           string
	RestaurantID   uuid.UUID
	Count          int
	Flavor         string
	EnforceWindows bool
}

// Deduction records how much one ledger entry contributed to a redemption.
type Deduction struct {
	UserPackageID uuid.UUID `json:"user_package_id"`
	Count         int       `json:"count"`
	Remaining     int       `json:"remaining"`
}

// RedeemResult is the outcome of a successful redemption.
type RedeemResult struct {
	RedeemLogID   uuid.UUID   `json:"redeem_log_id"`
	Count         int         `json:"count"`
	Deductions    []Deduction `json:"deductions"`
	RatingPending bool        `json:"rating_pending"`
}

// Redeem validates the submitted code against the user's OTP slot and, on
// success, deducts credit oldest-purchase-first inside a single transaction.
// The used flag is consumed with a conditional update guarded by the issuance
// version, so two concurrent attempts on the same code succeed at most once.
// Deductions are planned in full before any write: a shortfall fails with
// ErrInsufficientCredit and leaves the ledger untouched.
func (s *RedemptionService) Redeem(p RedeemParams) (*RedeemResult, error) {
	var user models.User
	if err := s.db.Where("phone = ?", p.Phone).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Used is checked before presence: success clears the code but keeps the
	// used flag, and a replayed code must read as already used, not missing.
	if user.ConsumptionOtpUsed {
		return nil, ErrOtpAlreadyUsed
	}
	if user.ConsumptionOtp == nil || *user.ConsumptionOtp == "" {
		return nil, ErrNoActiveOtp
	}
	now := time.Now()
	if user.ConsumptionOtpExpiresAt == nil || now.After(*user.ConsumptionOtpExpiresAt) {
		return nil, ErrOtpExpired
	}
	if normalizeCode(*user.ConsumptionOtp, s.otpLength) != normalizeCode(p.Code, s.otpLength) {
		return nil, ErrOtpMismatch
	}

	if user.ConsumptionOtpRestaurantID == nil {
		return nil, ErrRestaurantScopeMismatch
	}
	acting := p.RestaurantID
	if acting == uuid.Nil {
		acting = *user.ConsumptionOtpRestaurantID
	}
	if *user.ConsumptionOtpRestaurantID != acting {
		return nil, ErrRestaurantScopeMismatch
	}

	count := p.Count
	if count <= 0 {
		count = user.ConsumptionOtpCount
	}
	if count <= 0 {
		count = 1
	}

	var entries []models.UserPackage
	err := s.db.Preload("TimeWindows").
		Where("user_id = ? AND status = ? AND remaining_count > 0", user.ID, models.LedgerStatusActive).
		Order("purchased_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	eligible := entries
	var blocked []EligibilityResult
	if p.EnforceWindows {
		eligible = eligible[:0:0]
		for i := range entries {
			result := EvaluateEligibility(&entries[i], now)
			if result.Status == EligibilityOK {
				eligible = append(eligible, entries[i])
			} else {
				blocked = append(blocked, result)
			}
		}
	}

	plan, err := planDeductions(eligible, count)
	if err != nil {
		return nil, shortfallError(err, blocked)
	}

	redeemLogID := uuid.New()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Consume the code first; the row lock on the user serializes
		// concurrent attempts, and the version guard invalidates codes
		// overwritten by a newer issuance.
		res := tx.Model(&models.User{}).
			Where("id = ? AND consumption_otp_used = false AND otp_version = ?", user.ID, user.OtpVersion).
			Updates(map[string]interface{}{
				"consumption_otp":               nil,
				"consumption_otp_expires_at":    nil,
				"consumption_otp_restaurant_id": nil,
				"consumption_otp_count":         0,
				"consumption_otp_used":          true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOtpAlreadyUsed
		}

		for _, step := range plan {
			updates := map[string]interface{}{
				"remaining_count": step.Remaining,
			}
			if step.Remaining == 0 {
				updates["status"] = models.LedgerStatusExhausted
			}
			res := tx.Model(&models.UserPackage{}).
				Where("id = ? AND remaining_count = ?", step.UserPackageID, step.Remaining+step.Count).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("ledger entry %s changed concurrently", step.UserPackageID)
			}

			event := models.ConsumptionEvent{
				UserPackageID: step.UserPackageID,
				RestaurantID:  acting,
				Count:         step.Count,
				Flavor:        p.Flavor,
				ConsumedAt:    now,
				RedeemLogID:   redeemLogID,
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// The identifier was minted this call, so no rating can exist yet; the
	// flag tells the caller to collect one.
	return &RedeemResult{
		RedeemLogID:   redeemLogID,
		Count:         count,
		Deductions:    plan,
		RatingPending: true,
	}, nil
}

// Gift grants a single credit to the user with the given phone number,
// bypassing the OTP flow. The entry joins the regular FIFO pool.
func (s *RedemptionService) Gift(phone string, restaurantID, operatorID uuid.UUID) (*models.UserPackage, error) {
	var user models.User
	if err := s.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	entry := models.UserPackage{
		UserID:         user.ID,
		RestaurantID:   &restaurantID,
		OperatorID:     &operatorID,
		IsGift:         true,
		TotalCount:     1,
		RemainingCount: 1,
		Status:         models.LedgerStatusActive,
		PurchasedAt:    time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// planDeductions walks entries in the given order and splits the wanted
// count across them. It never mutates anything: if the entries cannot cover
// the count it fails up front, so a redemption can never leave the ledger
// partially decremented.
func planDeductions(entries []models.UserPackage, want int) ([]Deduction, error) {
	total := 0
	for i := range entries {
		total += entries[i].RemainingCount
	}
	if total < want {
		return nil, ErrInsufficientCredit
	}

	plan := make([]Deduction, 0, len(entries))
	left := want
	for i := range entries {
		if left == 0 {
			break
		}
		take := entries[i].RemainingCount
		if take > left {
			take = left
		}
		plan = append(plan, Deduction{
			UserPackageID: entries[i].ID,
			Count:         take,
			Remaining:     entries[i].RemainingCount - take,
		})
		left -= take
	}
	return plan, nil
}

// shortfallError refines an insufficient-credit failure when window
// enforcement filtered out entries that would otherwise have covered the
// request: the caller learns when to come back.
func shortfallError(err error, blocked []EligibilityResult) error {
	if !errors.Is(err, ErrInsufficientCredit) || len(blocked) == 0 {
		return err
	}

	var nextAt *time.Time
	var startsAt *time.Time
	sawNotStarted := false
	sawExpired := false
	for _, b := range blocked {
		switch b.Status {
		case EligibilityWaiting:
			if b.NextAvailableAt != nil && (nextAt == nil || b.NextAvailableAt.Before(*nextAt)) {
				nextAt = b.NextAvailableAt
			}
		case EligibilityNotStarted:
			sawNotStarted = true
			if b.NextAvailableAt != nil && (startsAt == nil || b.NextAvailableAt.Before(*startsAt)) {
				startsAt = b.NextAvailableAt
			}
		case EligibilityExpired:
			sawExpired = true
		}
	}

	switch {
	case nextAt != nil:
		return &WaitingError{NextAvailableAt: *nextAt}
	case startsAt != nil:
		return &NotStartedError{NextAvailableAt: *startsAt}
	case sawNotStarted:
		return ErrNotStarted
	case sawExpired:
		return ErrExpired
	}
	return err
}
