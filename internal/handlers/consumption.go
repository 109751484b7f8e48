package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/oblako/internal/middleware"
	"github.com/example/oblako/internal/models"
	"github.com/example/oblako/internal/services"
)

// ConsumptionHandler exposes the redemption engine over HTTP: code issuance,
// the two redemption entry points and gift grants.
type ConsumptionHandler struct {
	db         *gorm.DB
	otp        *services.OTPService
	redemption *services.RedemptionService
}

// NewConsumptionHandler constructs ConsumptionHandler.
func NewConsumptionHandler(db *gorm.DB, otp *services.OTPService, redemption *services.RedemptionService) *ConsumptionHandler {
	return &ConsumptionHandler{db: db, otp: otp, redemption: redemption}
}

type requestCodeRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Count        int    `json:"count"`
}

// RequestCode issues a consumption OTP to the authenticated customer.
func (h *ConsumptionHandler) RequestCode(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req requestCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid restaurant_id")
	}

	var restaurant models.Restaurant
	if err := h.db.First(&restaurant, "id = ? AND is_active = true", restaurantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "restaurant not found")
		}
		return err
	}

	issued, err := h.otp.IssueConsumptionCode(userID, restaurantID, req.Count)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    issued,
	})
}

type redeemRequest struct {
	PhoneNumber string `json:"phone_number"`
	OtpCode     string `json:"otp_code"`
	Count       int    `json:"count"`
	Flavor      string `json:"flavor"`
}

// Redeem is the operator-initiated redemption path. The acting restaurant
// comes from the operator's token, and time windows are not enforced: the
// operator supervises the consumption in person.
func (h *ConsumptionHandler) Redeem(c *fiber.Ctx) error {
	_, restaurantID, ok := middleware.GetOperator(c)
	if !ok {
		return fiber.NewError(fiber.StatusForbidden, "operator access required")
	}

	var req redeemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.PhoneNumber == "" || req.OtpCode == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone_number and otp_code are required")
	}

	result, err := h.redemption.Redeem(services.RedeemParams{
		Phone:          req.PhoneNumber,
		Code:           req.OtpCode,
		RestaurantID:   restaurantID,
		Count:          req.Count,
		Flavor:         req.Flavor,
		EnforceWindows: false,
	})
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

type verifyCodeRequest struct {
	PhoneNumber string `json:"phone_number"`
	OtpCode     string `json:"otp_code"`
}

// Verify is the self-service redemption path. The acting restaurant is the
// one bound at issuance, and window eligibility is enforced: when the credit
// is outside its window the response carries the next eligible instant.
func (h *ConsumptionHandler) Verify(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.PhoneNumber == "" || req.OtpCode == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone_number and otp_code are required")
	}

	result, err := h.redemption.Redeem(services.RedeemParams{
		Phone:          req.PhoneNumber,
		Code:           req.OtpCode,
		EnforceWindows: true,
	})
	if err != nil {
		var waiting *services.WaitingError
		if errors.As(err, &waiting) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"success":           false,
				"error":             waiting.Error(),
				"next_available_at": waiting.NextAvailableAt,
			})
		}
		var notStarted *services.NotStartedError
		if errors.As(err, &notStarted) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success":           false,
				"error":             notStarted.Error(),
				"next_available_at": notStarted.NextAvailableAt,
			})
		}
		return mapDomainError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

type giftRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// Gift grants one credit to a customer, operator-triggered, no OTP involved.
func (h *ConsumptionHandler) Gift(c *fiber.Ctx) error {
	operatorID, restaurantID, ok := middleware.GetOperator(c)
	if !ok {
		return fiber.NewError(fiber.StatusForbidden, "operator access required")
	}

	var req giftRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.PhoneNumber == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone_number is required")
	}

	entry, err := h.redemption.Gift(req.PhoneNumber, restaurantID, operatorID)
	if err != nil {
		return mapDomainError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":              entry.ID,
			"total_count":     entry.TotalCount,
			"remaining_count": entry.RemainingCount,
			"is_gift":         entry.IsGift,
		},
	})
}
