package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/oblako/internal/config"
)

// AdminKeyMiddleware guards the back-office surface with a shared API key.
// The key lives outside the JWT scheme entirely, so neither customer nor
// operator tokens can reach operator provisioning or ledger activation.
// An empty configured key disables the surface rather than leaving it open.
func AdminKeyMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminAPIKey == "" {
			return fiber.NewError(fiber.StatusForbidden, "admin access disabled")
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(cfg.AdminAPIKey)) != 1 {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}

		return c.Next()
	}
}
