package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/oblako/internal/services"
)

// mapDomainError converts engine sentinels into fiber errors with stable
// status codes. Anything unknown passes through to the recover/error layer.
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrUserNotFound):
		return fiber.NewError(fiber.StatusNotFound, services.ErrUserNotFound.Error())
	case errors.Is(err, services.ErrRedemptionNotFound):
		return fiber.NewError(fiber.StatusNotFound, services.ErrRedemptionNotFound.Error())
	case errors.Is(err, services.ErrNoActiveOtp),
		errors.Is(err, services.ErrOtpExpired),
		errors.Is(err, services.ErrOtpMismatch),
		errors.Is(err, services.ErrNotStarted),
		errors.Is(err, services.ErrExpired):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrOtpAlreadyUsed),
		errors.Is(err, services.ErrDuplicateRating):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrRestaurantScopeMismatch):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInsufficientCredit):
		return fiber.NewError(fiber.StatusUnprocessableEntity, services.ErrInsufficientCredit.Error())
	case errors.Is(err, services.ErrWaiting):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return err
}
