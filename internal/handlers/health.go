package handlers

import (
	"github.com/gofiber/fiber/v2"

	"custodia/internal/repositories"
)

// HealthCheck reports liveness of the API and its backing stores.
func HealthCheck(c *fiber.Ctx) error {
	status := fiber.Map{"api": "ok"}

	if repositories.DB != nil {
		if sqlDB, err := repositories.DB.DB(); err == nil && sqlDB.Ping() == nil {
			status["database"] = "ok"
		} else {
			status["database"] = "down"
		}
	}

	if repositories.CacheService != nil {
		if err := repositories.CacheService.HealthCheck(c.Context()); err == nil {
			status["cache"] = "ok"
		} else {
			status["cache"] = "down"
		}
	}

	return c.JSON(status)
}
