package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/oblako/internal/middleware"
	"github.com/example/oblako/internal/models"
	"github.com/example/oblako/internal/services"
	"github.com/example/oblako/internal/utils"
)

// ProfileHandler manages customer profile and credit endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the authenticated customer's profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":           user.ID,
			"first_name":   user.FirstName,
			"last_name":    user.LastName,
			"display_name": user.DisplayName,
			"phone":        user.Phone,
			"is_verified":  user.IsVerified,
			"created_at":   user.CreatedAt,
			"updated_at":   user.UpdatedAt,
		},
	})
}

type updateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
}

// UpdateProfile updates customer profile fields.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.DisplayName != "" {
		updates["display_name"] = req.DisplayName
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}
	updates["updated_at"] = time.Now()

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "profile updated"})
}

type creditEntry struct {
	ID             uuid.UUID                  `json:"id"`
	PackageID      *uuid.UUID                 `json:"package_id,omitempty"`
	IsGift         bool                       `json:"is_gift"`
	TotalCount     int                        `json:"total_count"`
	RemainingCount int                        `json:"remaining_count"`
	Status         string                     `json:"status"`
	PurchasedAt    time.Time                  `json:"purchased_at"`
	TimeWindows    []models.TimeWindow        `json:"time_windows,omitempty"`
	Eligibility    services.EligibilityResult `json:"eligibility"`
}

// GetCredit returns the customer's total remaining credit plus each live
// ledger entry with its current eligibility.
func (h *ProfileHandler) GetCredit(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var entries []models.UserPackage
	err := h.db.Preload("TimeWindows").
		Where("user_id = ? AND status = ? AND remaining_count > 0", userID, models.LedgerStatusActive).
		Order("purchased_at asc").
		Find(&entries).Error
	if err != nil {
		return err
	}

	now := time.Now()
	total := 0
	usable := 0
	out := make([]creditEntry, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		eligibility := services.EvaluateEligibility(e, now)
		total += e.RemainingCount
		if eligibility.Status == services.EligibilityOK {
			usable += e.RemainingCount
		}
		out = append(out, creditEntry{
			ID:             e.ID,
			PackageID:      e.PackageID,
			IsGift:         e.IsGift,
			TotalCount:     e.TotalCount,
			RemainingCount: e.RemainingCount,
			Status:         e.Status,
			PurchasedAt:    e.PurchasedAt,
			TimeWindows:    e.TimeWindows,
			Eligibility:    eligibility,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_remaining":  total,
			"usable_right_now": usable,
			"entries":          out,
		},
	})
}

// ListConsumptions returns the customer's consumption history, newest first.
func (h *ProfileHandler) ListConsumptions(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.ConsumptionEvent{}).
		Joins("JOIN user_packages ON user_packages.id = consumption_events.user_package_id").
		Where("user_packages.user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var items []models.ConsumptionEvent
	if err := query.Preload("Restaurant").
		Order("consumed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
