package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/oblako/internal/config"
	"github.com/example/oblako/internal/utils"
)

func adminTestApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	admin := app.Group("/admin", AdminKeyMiddleware(cfg))
	admin.Post("/operators", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	return app
}

func TestAdminKeyMiddlewareAcceptsConfiguredKey(t *testing.T) {
	cfg := &config.Config{AdminAPIKey: "top-secret"}
	app := adminTestApp(cfg)

	req := httptest.NewRequest("POST", "/admin/operators", nil)
	req.Header.Set("Authorization", "Bearer top-secret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminKeyMiddlewareRejectsWrongKey(t *testing.T) {
	cfg := &config.Config{AdminAPIKey: "top-secret"}
	app := adminTestApp(cfg)

	req := httptest.NewRequest("POST", "/admin/operators", nil)
	req.Header.Set("Authorization", "Bearer guessed")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAdminKeyMiddlewareRejectsCustomerToken(t *testing.T) {
	cfg := &config.Config{AdminAPIKey: "top-secret", JWTSecret: "jwt-secret"}
	app := adminTestApp(cfg)

	// A verified customer's JWT must not open the back-office surface.
	token, err := utils.GenerateToken(cfg.JWTSecret, uuid.New(), time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/admin/operators", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAdminKeyMiddlewareDisabledWithoutKey(t *testing.T) {
	cfg := &config.Config{}
	app := adminTestApp(cfg)

	req := httptest.NewRequest("POST", "/admin/operators", nil)
	req.Header.Set("Authorization", "Bearer anything")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAdminKeyMiddlewareMissingHeader(t *testing.T) {
	cfg := &config.Config{AdminAPIKey: "top-secret"}
	app := adminTestApp(cfg)

	req := httptest.NewRequest("POST", "/admin/operators", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
