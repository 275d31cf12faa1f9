package escrow

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"custodia/internal/models"
)

// Service is the escrow engine: the request lifecycle and its accounting.
type Service interface {
	// Initiate escrows the gross amount from the caller, forwards the gas
	// deposit and creates the request. Caller must be a whitelisted sender.
	Initiate(ctx context.Context, caller string, in InitiateInput) (*models.TransferRequest, error)

	// SetRiskScore stores the oracle's assessment and moves the request to
	// pending. Oracle-only. Any score value is accepted as-is.
	SetRiskScore(ctx context.Context, caller string, id uint64, score uint64) error

	// Execute settles a pending request against the current risk threshold.
	// Callable by anyone; at most one concurrent caller succeeds.
	Execute(ctx context.Context, caller string, id uint64) (approved bool, err error)

	// Cancel refunds the escrowed amount to the sender. Callable by the
	// request's sender or the owner, before execution only. The gas deposit
	// is never refunded.
	Cancel(ctx context.Context, caller string, id uint64) error

	// Views
	GetRequest(ctx context.Context, id uint64) (*models.TransferRequest, error)
	NextRequestID(ctx context.Context) (uint64, error)
}

// InitiateInput carries the caller-supplied parameters of a transfer request.
type InitiateInput struct {
	Token      string
	Amount     sdkmath.Int
	Recipient  string
	GasPayment sdkmath.Int
}

// Gate is what the engine needs from the registry: configuration reads and
// role/membership checks.
type Gate interface {
	Settings() models.Settings
	IsOwner(address string) bool
	IsOracle(address string) bool
	IsSenderWhitelisted(address string) bool
	IsRecipientWhitelisted(address string) bool
	IsAssetSupported(asset string) bool
}

// Cache is the optional request lookup cache.
type Cache interface {
	GetRequest(ctx context.Context, id uint64) (*models.TransferRequest, error)
	SetRequest(ctx context.Context, req *models.TransferRequest) error
	InvalidateRequest(ctx context.Context, id uint64) error
}
