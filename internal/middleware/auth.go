package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/oblako/internal/config"
	"github.com/example/oblako/internal/utils"
)

const tokenContextKey = "currentToken"

// AuthMiddleware validates JWT tokens and loads the decoded identity into context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		info, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(tokenContextKey, info)
		return c.Next()
	}
}

// RequireOperator rejects requests whose token does not carry the operator role.
func RequireOperator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, ok := getToken(c)
		if !ok || info.Role != utils.RoleOperator || info.RestaurantID == uuid.Nil {
			return fiber.NewError(fiber.StatusForbidden, "operator access required")
		}
		return c.Next()
	}
}

// GetCurrentUserID extracts the authenticated customer ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	info, ok := getToken(c)
	if !ok || info.Role != utils.RoleCustomer {
		return uuid.Nil, false
	}
	return info.UserID, true
}

// GetOperator extracts the operator ID and its restaurant scope from context.
func GetOperator(c *fiber.Ctx) (operatorID, restaurantID uuid.UUID, ok bool) {
	info, found := getToken(c)
	if !found || info.Role != utils.RoleOperator {
		return uuid.Nil, uuid.Nil, false
	}
	return info.UserID, info.RestaurantID, true
}

func getToken(c *fiber.Ctx) (*utils.TokenInfo, bool) {
	value := c.Locals(tokenContextKey)
	if value == nil {
		return nil, false
	}
	info, ok := value.(*utils.TokenInfo)
	return info, ok
}
