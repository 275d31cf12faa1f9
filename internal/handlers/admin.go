package handlers

import (
	"context"
	"errors"

	sdkmath "cosmossdk.io/math"
	"github.com/gofiber/fiber/v2"

	"custodia/internal/middleware"
	"custodia/internal/services/registry"
	"custodia/internal/utils/response"
)

// AdminHandler exposes the owner-only configuration and membership mutators.
// Ownership is checked by the registry against the caller address, not here;
// the handler only shapes requests and responses.
type AdminHandler struct {
	registry *registry.Service
}

func NewAdminHandler(reg *registry.Service) *AdminHandler {
	return &AdminHandler{registry: reg}
}

type addressBody struct {
	Address string `json:"address"`
}

type addressesBody struct {
	Addresses []string `json:"addresses"`
}

type assetsBody struct {
	Tokens    []string `json:"tokens"`
	Supported bool     `json:"supported"`
}

type amountBody struct {
	Amount string `json:"amount"`
}

type uintBody struct {
	Value uint `json:"value"`
}

func (h *AdminHandler) TransferOwnership(c *fiber.Ctx) error {
	var body addressBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := h.registry.TransferOwnership(c.Context(), middleware.CallerAddress(c), body.Address); err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "ownership transferred", fiber.Map{"owner": body.Address})
}

func (h *AdminHandler) SetOracle(c *fiber.Ctx) error {
	var body addressBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := h.registry.SetOracle(c.Context(), middleware.CallerAddress(c), body.Address); err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "oracle updated", fiber.Map{"oracle": body.Address})
}

func (h *AdminHandler) SetGasDeposit(c *fiber.Ctx) error {
	var body amountBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	amount, ok := sdkmath.NewIntFromString(body.Amount)
	if !ok || amount.IsNegative() {
		return response.BadRequest(c, "invalid amount")
	}
	if err := h.registry.SetGasDeposit(c.Context(), middleware.CallerAddress(c), amount); err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "gas deposit updated", fiber.Map{"gas_deposit": amount.String()})
}

func (h *AdminHandler) SetFeeRecipient(c *fiber.Ctx) error {
	var body addressBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := h.registry.SetFeeRecipient(c.Context(), middleware.CallerAddress(c), body.Address); err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "fee recipient updated", fiber.Map{"fee_recipient": body.Address})
}

func (h *AdminHandler) SetGasPaymentsRecipient(c *fiber.Ctx) error {
	var body addressBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := h.registry.SetGasPaymentsRecipient(c.Context(), middleware.CallerAddress(c), body.Address); err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "gas payments recipient updated", fiber.Map{"gas_payments_recipient": body.Address})
}

func (h *AdminHandler) SetFeeBP(c *fiber.Ctx) error {
	var body uintBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := h.registry.SetFeeBP(c.Context(), middleware.CallerAddress(c), body.Value); err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "fee basis points updated", fiber.Map{"fee_bp": body.Value})
}

func (h *AdminHandler) SetRiskThreshold(c *fiber.Ctx) error {
	var body uintBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := h.registry.SetRiskThreshold(c.Context(), middleware.CallerAddress(c), body.Value); err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "risk threshold updated", fiber.Map{"risk_threshold": body.Value})
}

// SetSupportedTokens toggles token support element-wise; the batch is atomic.
func (h *AdminHandler) SetSupportedTokens(c *fiber.Ctx) error {
	var body assetsBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := h.registry.SetSupportedAssets(c.Context(), middleware.CallerAddress(c), body.Tokens, body.Supported); err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "token support updated", fiber.Map{"tokens": body.Tokens, "supported": body.Supported})
}

func (h *AdminHandler) AddSenders(c *fiber.Ctx) error {
	return h.mutateWhitelist(c, h.registry.AddSenders, "senders whitelisted")
}

func (h *AdminHandler) RemoveSenders(c *fiber.Ctx) error {
	return h.mutateWhitelist(c, h.registry.RemoveSenders, "senders removed")
}

func (h *AdminHandler) AddRecipients(c *fiber.Ctx) error {
	return h.mutateWhitelist(c, h.registry.AddRecipients, "recipients whitelisted")
}

func (h *AdminHandler) RemoveRecipients(c *fiber.Ctx) error {
	return h.mutateWhitelist(c, h.registry.RemoveRecipients, "recipients removed")
}

func (h *AdminHandler) mutateWhitelist(c *fiber.Ctx, op func(ctx context.Context, caller string, addresses []string) error, message string) error {
	var body addressesBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := op(c.Context(), middleware.CallerAddress(c), body.Addresses); err != nil {
		return registryError(c, err)
	}
	return response.Success(c, message, fiber.Map{"addresses": body.Addresses})
}

func registryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, registry.ErrNotOwner):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, registry.ErrZeroAddress),
		errors.Is(err, registry.ErrFeeTooHigh),
		errors.Is(err, registry.ErrThresholdOutOfRange):
		return response.BadRequest(c, err.Error())
	default:
		return response.ServerError(c, "internal error")
	}
}
