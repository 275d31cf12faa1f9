package handlers

import (
	"errors"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/gofiber/fiber/v2"

	"custodia/internal/middleware"
	"custodia/internal/repositories"
	"custodia/internal/services/custody"
	"custodia/internal/services/escrow"
	"custodia/internal/utils/response"
)

// EscrowHandler exposes the request lifecycle over HTTP.
type EscrowHandler struct {
	service escrow.Service
}

func NewEscrowHandler(service escrow.Service) *EscrowHandler {
	return &EscrowHandler{service: service}
}

type initiateRequest struct {
	Token      string `json:"token"`
	Amount     string `json:"amount"`
	Recipient  string `json:"recipient"`
	GasPayment string `json:"gas_payment"`
}

type scoreRequest struct {
	Score uint64 `json:"score"`
}

// Initiate creates a transfer request, escrowing the gross amount and
// forwarding the gas deposit.
func (h *EscrowHandler) Initiate(c *fiber.Ctx) error {
	var body initiateRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	amount, ok := sdkmath.NewIntFromString(body.Amount)
	if !ok {
		return response.BadRequest(c, "invalid amount")
	}
	gasPayment := sdkmath.ZeroInt()
	if body.GasPayment != "" {
		gasPayment, ok = sdkmath.NewIntFromString(body.GasPayment)
		if !ok {
			return response.BadRequest(c, "invalid gas payment")
		}
	}

	req, err := h.service.Initiate(c.Context(), middleware.CallerAddress(c), escrow.InitiateInput{
		Token:      body.Token,
		Amount:     amount,
		Recipient:  body.Recipient,
		GasPayment: gasPayment,
	})
	if err != nil {
		return escrowError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "request initiated",
		"data":    req,
	})
}

// SetRiskScore is the oracle's single entry point.
func (h *EscrowHandler) SetRiskScore(c *fiber.Ctx) error {
	id, err := requestID(c)
	if err != nil {
		return response.BadRequest(c, "invalid request id")
	}

	var body scoreRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.service.SetRiskScore(c.Context(), middleware.CallerAddress(c), id, body.Score); err != nil {
		return escrowError(c, err)
	}
	return response.Success(c, "risk score set", fiber.Map{"id": id, "score": body.Score})
}

// Execute settles a pending request. Permissionless.
func (h *EscrowHandler) Execute(c *fiber.Ctx) error {
	id, err := requestID(c)
	if err != nil {
		return response.BadRequest(c, "invalid request id")
	}

	approved, err := h.service.Execute(c.Context(), middleware.CallerAddress(c), id)
	if err != nil {
		return escrowError(c, err)
	}
	return response.Success(c, "request executed", fiber.Map{"id": id, "approved": approved})
}

// Cancel refunds a not-yet-executed request.
func (h *EscrowHandler) Cancel(c *fiber.Ctx) error {
	id, err := requestID(c)
	if err != nil {
		return response.BadRequest(c, "invalid request id")
	}

	if err := h.service.Cancel(c.Context(), middleware.CallerAddress(c), id); err != nil {
		return escrowError(c, err)
	}
	return response.Success(c, "request cancelled", fiber.Map{"id": id})
}

func (h *EscrowHandler) GetRequest(c *fiber.Ctx) error {
	id, err := requestID(c)
	if err != nil {
		return response.BadRequest(c, "invalid request id")
	}

	req, err := h.service.GetRequest(c.Context(), id)
	if err != nil {
		return escrowError(c, err)
	}
	return response.Success(c, "request", req)
}

func (h *EscrowHandler) NextRequestID(c *fiber.Ctx) error {
	next, err := h.service.NextRequestID(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to read request counter")
	}
	return response.Success(c, "next request id", fiber.Map{"next_id": next})
}

func requestID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

// escrowError maps engine errors onto HTTP statuses: validation 400,
// authorization 403, state conflicts 409, missing records 404.
func escrowError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, escrow.ErrZeroAmount),
		errors.Is(err, escrow.ErrZeroAddress),
		errors.Is(err, escrow.ErrWrongGasPayment),
		errors.Is(err, escrow.ErrUnsupportedToken):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, escrow.ErrSenderNotWhitelisted),
		errors.Is(err, escrow.ErrRecipientNotWhitelisted),
		errors.Is(err, escrow.ErrNotOracle),
		errors.Is(err, escrow.ErrNotRequestOwner):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, escrow.ErrNotInitiated),
		errors.Is(err, escrow.ErrNotPending),
		errors.Is(err, escrow.ErrNotPendingNorInitiated):
		return response.Conflict(c, err.Error())
	case errors.Is(err, repositories.ErrRequestNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, escrow.ErrCustodyFailed),
		errors.Is(err, custody.ErrInsufficientFunds):
		return response.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		return response.ServerError(c, "internal error")
	}
}
