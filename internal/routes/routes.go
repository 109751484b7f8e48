package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/oblako/internal/config"
	"github.com/example/oblako/internal/handlers"
	"github.com/example/oblako/internal/middleware"
	"github.com/example/oblako/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cache *redis.Client, cfg *config.Config) {
	smsService := services.NewSMSService(cfg.SMSGatewayURL, cfg.SMSGatewayToken, cfg.SMSSender)
	otpService := services.NewOTPService(db, smsService, cfg.OtpTTL, cfg.OtpLength)
	redemptionService := services.NewRedemptionService(db, cfg.OtpLength)
	statsService := services.NewStatsService(db, cache, cfg.StatsCacheTTL)

	authHandler := handlers.NewAuthHandler(db, cfg, smsService)
	catalogHandler := handlers.NewCatalogHandler(db)
	profileHandler := handlers.NewProfileHandler(db)
	consumptionHandler := handlers.NewConsumptionHandler(db, otpService, redemptionService)
	ratingService := services.NewRatingService(db)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	adminHandler := handlers.NewAdminHandler(db, statsService)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/verify", authHandler.Verify)
	auth.Post("/operator/login", authHandler.OperatorLogin)

	// Public catalog
	restaurants := api.Group("/restaurants")
	restaurants.Get("/", catalogHandler.ListRestaurants)
	restaurants.Get("/:id", catalogHandler.GetRestaurant)
	restaurants.Post("/", catalogHandler.CreateRestaurant)
	restaurants.Put("/:id", catalogHandler.UpdateRestaurant)
	restaurants.Delete("/:id", catalogHandler.DeleteRestaurant)

	packages := api.Group("/packages")
	packages.Get("/", catalogHandler.ListPackages)
	packages.Post("/", catalogHandler.CreatePackage)
	packages.Delete("/:id", catalogHandler.DeletePackage)

	// Self-service verification: the caller need not be the customer, the
	// restaurant scope comes from the OTP binding.
	api.Post("/consumption/verify", consumptionHandler.Verify)

	// Customer routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))
	protected.Post("/packages/:id/purchase", catalogHandler.PurchasePackage)
	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/profile/credit", profileHandler.GetCredit)
	protected.Get("/profile/consumptions", profileHandler.ListConsumptions)
	protected.Post("/consumption/otp", consumptionHandler.RequestCode)
	protected.Post("/ratings", ratingHandler.Submit)
	protected.Get("/ratings/pending", ratingHandler.Pending)

	// Operator routes
	operator := api.Group("", middleware.AuthMiddleware(cfg), middleware.RequireOperator())
	operator.Post("/consumption/redeem", consumptionHandler.Redeem)
	operator.Post("/consumption/gift", consumptionHandler.Gift)

	// Admin routes, keyed separately from customer and operator JWTs
	admin := api.Group("/admin", middleware.AdminKeyMiddleware(cfg))
	admin.Get("/stats", adminHandler.DashboardStats)
	admin.Post("/operators", adminHandler.CreateOperator)
	admin.Patch("/ledger/:id/activate", adminHandler.ActivateLedgerEntry)
}
