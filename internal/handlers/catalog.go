package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/oblako/internal/middleware"
	"github.com/example/oblako/internal/models"
)

// CatalogHandler manages restaurants and package templates.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// Restaurants

func (h *CatalogHandler) ListRestaurants(c *fiber.Ctx) error {
	var items []models.Restaurant
	if err := h.db.Where("is_active = true").Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

func (h *CatalogHandler) GetRestaurant(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	var item models.Restaurant
	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "restaurant not found")
		}
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

func (h *CatalogHandler) CreateRestaurant(c *fiber.Ctx) error {
	var item models.Restaurant
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if item.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	item.IsActive = true
	if err := h.db.Create(&item).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

func (h *CatalogHandler) UpdateRestaurant(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	var item models.Restaurant
	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "restaurant not found")
		}
		return err
	}
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	item.ID = id
	if err := h.db.Save(&item).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

func (h *CatalogHandler) DeleteRestaurant(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Model(&models.Restaurant{}).Where("id = ?", id).
		Update("is_active", false).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "restaurant deactivated"})
}

// Packages

type timeWindowRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type createPackageRequest struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Count        int                 `json:"count"`
	Price        float64             `json:"price"`
	Currency     string              `json:"currency"`
	DurationDays int                 `json:"duration_days"`
	TimeWindows  []timeWindowRequest `json:"time_windows"`
}

func (h *CatalogHandler) ListPackages(c *fiber.Ctx) error {
	var items []models.Package
	if err := h.db.Preload("TimeWindows").Where("is_active = true").Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

func (h *CatalogHandler) CreatePackage(c *fiber.Ctx) error {
	var req createPackageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Count <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "name and a positive count are required")
	}

	pkg := models.Package{
		Name:         req.Name,
		Description:  req.Description,
		Count:        req.Count,
		Price:        req.Price,
		Currency:     req.Currency,
		DurationDays: req.DurationDays,
		IsActive:     true,
	}
	if pkg.Currency == "" {
		pkg.Currency = "UZS"
	}
	for i, w := range req.TimeWindows {
		pkg.TimeWindows = append(pkg.TimeWindows, models.TimeWindow{
			Position: i,
			Start:    w.Start,
			End:      w.End,
		})
	}

	if err := h.db.Create(&pkg).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": pkg})
}

func (h *CatalogHandler) DeletePackage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Model(&models.Package{}).Where("id = ?", id).
		Update("is_active", false).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "package deactivated"})
}

// PurchasePackage grants the authenticated customer a fresh ledger entry
// from a package template. The template's time windows are copied onto the
// entry so later template edits cannot change already-sold credit.
func (h *CatalogHandler) PurchasePackage(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pkgID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var pkg models.Package
	if err := h.db.Preload("TimeWindows").First(&pkg, "id = ? AND is_active = true", pkgID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "package not found")
		}
		return err
	}

	purchasedAt := time.Now()
	entry := models.UserPackage{
		UserID:         userID,
		PackageID:      &pkg.ID,
		TotalCount:     pkg.Count,
		RemainingCount: pkg.Count,
		Status:         models.LedgerStatusActive,
		PurchasedAt:    purchasedAt,
	}
	if pkg.DurationDays > 0 {
		start := purchasedAt
		end := purchasedAt.AddDate(0, 0, pkg.DurationDays)
		entry.StartDate = &start
		entry.EndDate = &end
	}
	for _, w := range pkg.TimeWindows {
		entry.TimeWindows = append(entry.TimeWindows, models.TimeWindow{
			Position: w.Position,
			Start:    w.Start,
			End:      w.End,
		})
	}

	if err := h.db.Create(&entry).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":              entry.ID,
			"package_id":      pkg.ID,
			"total_count":     entry.TotalCount,
			"remaining_count": entry.RemainingCount,
			"status":          entry.Status,
			"start_date":      entry.StartDate,
			"end_date":        entry.EndDate,
		},
	})
}
