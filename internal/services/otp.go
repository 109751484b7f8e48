package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/oblako/internal/models"
)

// OTPService issues one-time consumption codes. A user owns at most one live
// code; issuing a new one permanently invalidates the old one.
type OTPService struct {
	db     *gorm.DB
	sms    *SMSService
	ttl    time.Duration
	length int
}

// NewOTPService constructs an OTPService.
func NewOTPService(db *gorm.DB, sms *SMSService, ttl time.Duration, length int) *OTPService {
	if length <= 0 {
		length = 5
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &OTPService{db: db, sms: sms, ttl: ttl, length: length}
}

// IssuedCode is the outcome of a successful issuance.
type IssuedCode struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Count     int       `json:"count"`
}

// IssueConsumptionCode binds a fresh code to (user, restaurant, count) after
// verifying the user's total remaining credit covers the requested count.
// The write bumps otp_version so an in-flight redemption of the old code
// loses its conditional update.
func (s *OTPService) IssueConsumptionCode(userID, restaurantID uuid.UUID, count int) (*IssuedCode, error) {
	if count <= 0 {
		count = 1
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var available int64
	err := s.db.Model(&models.UserPackage{}).
		Where("user_id = ? AND status = ? AND remaining_count > 0", userID, models.LedgerStatusActive).
		Select("COALESCE(SUM(remaining_count), 0)").
		Scan(&available).Error
	if err != nil {
		return nil, err
	}
	if available < int64(count) {
		return nil, ErrInsufficientCredit
	}

	code, err := generateCode(s.length)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(s.ttl)

	err = s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"consumption_otp":               code,
		"consumption_otp_expires_at":    expiresAt,
		"consumption_otp_restaurant_id": restaurantID,
		"consumption_otp_count":         count,
		"consumption_otp_used":          false,
		"otp_version":                   gorm.Expr("otp_version + 1"),
	}).Error
	if err != nil {
		return nil, err
	}

	if s.sms != nil {
		s.sms.SendConsumptionCode(user.Phone, code, expiresAt)
	}

	return &IssuedCode{Code: code, ExpiresAt: expiresAt, Count: count}, nil
}

// generateCode produces a zero-padded numeric code of the given width.
func generateCode(length int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// normalizeCode reduces a submitted code to its digits and left-pads to the
// given width. Codes are fixed-width digit strings, not integers: "42" and
// "00042" must compare equal at width 5.
func normalizeCode(code string, width int) string {
	var digits strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	out := digits.String()
	out = strings.TrimLeft(out, "0")
	for len(out) < width {
		out = "0" + out
	}
	return out
}
