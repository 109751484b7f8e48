package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/oblako/internal/middleware"
	"github.com/example/oblako/internal/services"
)

// RatingHandler links completed redemptions to satisfaction ratings.
type RatingHandler struct {
	ratings *services.RatingService
}

// NewRatingHandler constructs RatingHandler.
func NewRatingHandler(ratings *services.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

type submitRatingRequest struct {
	RestaurantID string `json:"restaurant_id"`
	OperatorID   string `json:"operator_id"`
	PackageID    string `json:"package_id"`
	RedeemLogID  string `json:"redeem_log_id"`
	Rating       int    `json:"rating"`
	IsGift       bool   `json:"is_gift"`
}

// Submit records a rating for a redemption. Resubmission with the same
// redeem log id is rejected, which makes the endpoint idempotent from the
// client's point of view.
func (h *RatingHandler) Submit(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req submitRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Rating < 1 || req.Rating > 5 {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
	}

	redeemLogID, err := uuid.Parse(req.RedeemLogID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid redeem_log_id")
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid restaurant_id")
	}

	params := services.RatingParams{
		UserID:       userID,
		RestaurantID: restaurantID,
		RedeemLogID:  redeemLogID,
		Score:        req.Rating,
		IsGift:       req.IsGift,
	}
	if id, err := uuid.Parse(req.OperatorID); err == nil {
		params.OperatorID = &id
	}
	if id, err := uuid.Parse(req.PackageID); err == nil {
		params.PackageID = &id
	}

	rating, err := h.ratings.Submit(params)
	if err != nil {
		return mapDomainError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":            rating.ID,
			"redeem_log_id": rating.RedeemLogID,
			"score":         rating.Score,
		},
	})
}

// Pending lists the caller's consumptions that have no rating yet.
func (h *RatingHandler) Pending(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pending, err := h.ratings.Pending(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    pending,
	})
}
