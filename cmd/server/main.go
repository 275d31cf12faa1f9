// Package main is the entry point for the escrow API server. It wires the
// database, the cache, the registry and the engine, then serves HTTP.
package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rs/zerolog"

	"custodia/internal/config"
	"custodia/internal/handlers"
	"custodia/internal/middleware"
	"custodia/internal/repositories"
	"custodia/internal/services/auth"
	"custodia/internal/services/escrow"
	"custodia/internal/services/events"
	"custodia/internal/services/registry"
)

func main() {
	config.LoadEnv()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "custodia").Logger()
	if !config.IsProduction() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := repositories.InitDB(); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			sqlDB.Close()
		}
		if repositories.CacheService != nil {
			repositories.CacheService.Close()
		}
	}()

	if repositories.CacheService != nil {
		if err := repositories.CacheService.HealthCheck(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, request cache degraded")
		}
	}

	// Repositories and services.
	escrowRepo := repositories.NewEscrowRepository(repositories.DB)
	registryRepo := repositories.NewRegistryRepository(repositories.DB)
	eventRepo := repositories.NewEventRepository(repositories.DB)
	accountRepo := repositories.NewAccountRepository(repositories.DB)

	recorder := events.NewService(eventRepo, logger)

	reg, err := registry.NewService(registryRepo, recorder, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load registry; run cmd/seed first")
	}

	engine := escrow.NewService(
		escrowRepo,
		reg,
		recorder,
		repositories.CacheService,
		escrow.NoopMetricsCollector{},
		logger,
	)

	authService := auth.NewService(accountRepo, repositories.CacheService)

	h := &handlers.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Escrow: handlers.NewEscrowHandler(engine),
		Admin:  handlers.NewAdminHandler(reg),
		Views:  handlers.NewViewsHandler(reg, authService, eventRepo),
		AuthMW: middleware.NewAuthMiddleware(authService),
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	for _, route := range []string{"/api/register", "/api/login"} {
		app.Use(route, limiter.New(limiter.Config{
			Max:        5,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests. Please try again later.",
				})
			},
		}))
	}

	handlers.SetupRoutes(app, h)

	addr := ":" + config.GetEnv("PORT", "3000")
	logger.Info().Str("addr", addr).Msg("starting server")
	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
