package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"custodia/internal/middleware"
	"custodia/internal/services/auth"
	"custodia/internal/utils/response"
)

// AuthHandler serves account registration and login.
type AuthHandler struct {
	service auth.Service
}

func NewAuthHandler(service auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body registerRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if body.Email == "" || body.Password == "" {
		return response.BadRequest(c, "email and password are required")
	}

	account, err := h.service.Register(body.Email, body.Password, body.Name)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, auth.ErrEmailTaken):
			return response.Conflict(c, err.Error())
		default:
			return response.ServerError(c, "failed to register account")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "account created",
		"data": fiber.Map{
			"id":      account.ID,
			"email":   account.Email,
			"address": account.Address,
		},
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	account, accessToken, refreshToken, err := h.service.Login(body.Email, body.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	return response.Success(c, "logged in", fiber.Map{
		"address":       account.Address,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var body refreshRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	accessToken, refreshToken, err := h.service.RefreshTokens(body.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid refresh token"})
	}

	return response.Success(c, "tokens refreshed", fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return response.Unauthorized(c)
	}
	if err := h.service.Logout(claims.AccountID); err != nil {
		return response.ServerError(c, "failed to log out")
	}
	return response.Success(c, "logged out", nil)
}
