package escrow

import "errors"

// Engine errors. None is retriable by the engine itself; the caller may retry
// with corrected input. Every failure leaves state fully unchanged.
var (
	// Validation
	ErrZeroAmount       = errors.New("amount must be greater than zero")
	ErrZeroAddress      = errors.New("zero address")
	ErrWrongGasPayment  = errors.New("gas payment does not match required deposit")
	ErrUnsupportedToken = errors.New("token is not supported")

	// Authorization
	ErrSenderNotWhitelisted    = errors.New("sender is not whitelisted")
	ErrRecipientNotWhitelisted = errors.New("recipient is not whitelisted")
	ErrNotOracle               = errors.New("caller is not the oracle")
	ErrNotRequestOwner         = errors.New("caller is neither the request sender nor the owner")

	// State
	ErrNotInitiated           = errors.New("request is not initiated")
	ErrNotPending             = errors.New("request is not pending")
	ErrNotPendingNorInitiated = errors.New("request is not pending nor initiated")

	// Custody failures are wrapped, not swallowed.
	ErrCustodyFailed = errors.New("custody transfer failed")
)
