// Package middleware provides HTTP middleware for the fiber app:
// authentication and caller-identity extraction.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"custodia/internal/models"
	"custodia/internal/services/auth"
	"custodia/internal/utils"
)

// AuthMiddleware validates JWT tokens and stores the account claims and the
// caller address in the request context. The address is the only identity the
// escrow engine trusts.
type AuthMiddleware struct {
	authService auth.Service
}

func NewAuthMiddleware(authService auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	// Reject tokens issued before the last logout.
	currentVersion, err := m.authService.GetAccountTokenVersion(claims.AccountID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}
	if claims.TokenVersion != currentVersion {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session expired"})
	}

	c.Locals("claims", claims)
	c.Locals("address", claims.Address)

	return c.Next()
}

// CallerAddress returns the authenticated caller's address, or "" when the
// request is unauthenticated.
func CallerAddress(c *fiber.Ctx) string {
	address, _ := c.Locals("address").(string)
	return address
}

// Claims returns the validated account claims stored by the handler.
func Claims(c *fiber.Ctx) *models.AccountClaims {
	claims, _ := c.Locals("claims").(*models.AccountClaims)
	return claims
}
