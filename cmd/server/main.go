package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/oblako/internal/config"
	"github.com/example/oblako/internal/database"
	"github.com/example/oblako/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)
	cache := database.ConnectRedis(cfg.RedisURL)

	app := fiber.New(fiber.Config{
		AppName: "Oblako Loyalty Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cache, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := cache.Ping(ctx).Err(); err != nil {
		log.Printf("Redis warm-up failed: %v", err)
	}
	cancel()

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
