package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/oblako/internal/models"
	"github.com/example/oblako/internal/services"
	"github.com/example/oblako/internal/utils"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	db    *gorm.DB
	stats *services.StatsService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, stats *services.StatsService) *AdminHandler {
	return &AdminHandler{db: db, stats: stats}
}

// DashboardStats returns cached aggregate statistics.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.stats.Dashboard(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}

// ActivateLedgerEntry moves a pending ledger entry to active. Pending is the
// state externally settled purchases land in; active and exhausted are the
// only states reachable from it.
func (h *AdminHandler) ActivateLedgerEntry(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	res := h.db.Model(&models.UserPackage{}).
		Where("id = ? AND status = ?", id, models.LedgerStatusPending).
		Update("status", models.LedgerStatusActive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no pending ledger entry with that id")
	}

	return c.JSON(fiber.Map{"success": true, "message": "ledger entry activated"})
}

type createOperatorRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
}

// CreateOperator registers a staff account for a restaurant.
func (h *AdminHandler) CreateOperator(c *fiber.Ctx) error {
	var req createOperatorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Phone == "" || req.Password == "" || req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid restaurant_id")
	}

	var restaurant models.Restaurant
	if err := h.db.First(&restaurant, "id = ?", restaurantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "restaurant not found")
		}
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	operator := models.Operator{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := h.db.Create(&operator).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":            operator.ID,
			"name":          operator.Name,
			"phone":         operator.Phone,
			"restaurant_id": operator.RestaurantID,
		},
	})
}
