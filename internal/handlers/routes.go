package handlers

import (
	"github.com/gofiber/fiber/v2"

	"custodia/internal/middleware"
)

// Handlers bundles the constructed handler set for route registration.
type Handlers struct {
	Auth   *AuthHandler
	Escrow *EscrowHandler
	Admin  *AdminHandler
	Views  *ViewsHandler
	AuthMW *middleware.AuthMiddleware
}

// SetupRoutes registers the HTTP surface. Authentication only establishes the
// caller address; authorization (owner, oracle, whitelists) happens inside
// the services so it can never drift from the engine's own checks.
func SetupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", HealthCheck)

	api := app.Group("/api")
	api.Post("/register", h.Auth.Register)
	api.Post("/login", h.Auth.Login)
	api.Post("/refresh", h.Auth.Refresh)

	// Public read surface.
	api.Get("/settings", h.Views.GetSettings)
	api.Get("/senders", h.Views.ListSenders)
	api.Get("/recipients", h.Views.ListRecipients)
	api.Get("/tokens", h.Views.ListTokens)

	authenticated := api.Group("/", h.AuthMW.Handler)
	authenticated.Post("/logout", h.Auth.Logout)
	authenticated.Get("/participants/:address", h.Views.GetParticipant)
	authenticated.Get("/events", h.Views.ListEvents)

	// Request lifecycle.
	requests := authenticated.Group("/requests")
	requests.Post("/", h.Escrow.Initiate)
	requests.Get("/next-id", h.Escrow.NextRequestID)
	requests.Get("/:id", h.Escrow.GetRequest)
	requests.Post("/:id/score", h.Escrow.SetRiskScore)
	requests.Post("/:id/execute", h.Escrow.Execute)
	requests.Post("/:id/cancel", h.Escrow.Cancel)

	// Owner-only configuration; the registry enforces ownership.
	admin := authenticated.Group("/admin")
	admin.Post("/ownership", h.Admin.TransferOwnership)
	admin.Post("/oracle", h.Admin.SetOracle)
	admin.Post("/gas-deposit", h.Admin.SetGasDeposit)
	admin.Post("/fee-recipient", h.Admin.SetFeeRecipient)
	admin.Post("/gas-payments-recipient", h.Admin.SetGasPaymentsRecipient)
	admin.Post("/fee-bp", h.Admin.SetFeeBP)
	admin.Post("/risk-threshold", h.Admin.SetRiskThreshold)
	admin.Post("/tokens", h.Admin.SetSupportedTokens)
	admin.Post("/senders", h.Admin.AddSenders)
	admin.Delete("/senders", h.Admin.RemoveSenders)
	admin.Post("/recipients", h.Admin.AddRecipients)
	admin.Delete("/recipients", h.Admin.RemoveRecipients)
}
