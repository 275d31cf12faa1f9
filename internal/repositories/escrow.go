package repositories

import (
	sdkmath "cosmossdk.io/math"

	"custodia/internal/models"
)

// EscrowRepository covers the request ledger rows and the custody balance
// rows. Both live behind one interface so a state transition and its asset
// movement can share a single database transaction.
type EscrowRepository interface {
	// Request ledger
	CreateRequest(req *models.TransferRequest) error
	GetRequest(id uint64) (*models.TransferRequest, error)
	NextRequestID() (uint64, error)

	// UpdateStatusFrom moves a request to a new status only if its current
	// status is one of the given values. ErrStatusConflict when no row
	// matched; this is the compare-and-swap guarding permissionless execute.
	UpdateStatusFrom(id uint64, to models.RequestStatus, from ...models.RequestStatus) error

	// AssignRiskScore stores the score and moves Initiated to Pending in one
	// guarded update.
	AssignRiskScore(id uint64, score uint64) error

	// Custody balances
	GetBalance(asset, account string) (sdkmath.Int, error)
	CreditBalance(asset, account string, amount sdkmath.Int) error
	DebitBalance(asset, account string, amount sdkmath.Int) error

	// ExecuteInTransaction runs fc against a transaction-bound repository.
	// Any error rolls back every mutation made inside fc.
	ExecuteInTransaction(fc func(EscrowRepository) error) error
}
