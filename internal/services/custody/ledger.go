// Package custody implements the asset custody primitive: balance rows per
// (asset, account) pair with all-or-nothing transfers. The escrow engine
// holds funds under the vault account between initiation and settlement.
package custody

import (
	"errors"

	sdkmath "cosmossdk.io/math"

	"custodia/internal/repositories"
)

// EscrowVault is the account that custodies escrowed funds. Its balance in a
// token always equals the sum of AmountFromSender over live requests for that
// token, absent out-of-band deposits.
const EscrowVault = "vault.escrow"

// NativeAsset is the settlement asset used for gas-deposit side payments.
const NativeAsset = "native"

// Ledger moves value between accounts. It is bound to a repository instance,
// which may be transaction-scoped; callers compose transfers with request
// state changes inside one repository transaction.
type Ledger struct {
	repo repositories.EscrowRepository
}

func NewLedger(repo repositories.EscrowRepository) *Ledger {
	if repo == nil {
		panic("repo is required")
	}
	return &Ledger{repo: repo}
}

// Deposit moves amount of asset from a participant into the escrow vault.
func (l *Ledger) Deposit(asset, from string, amount sdkmath.Int) error {
	return l.Transfer(asset, from, EscrowVault, amount)
}

// Release moves amount of asset out of the escrow vault to a destination.
func (l *Ledger) Release(asset, to string, amount sdkmath.Int) error {
	return l.Transfer(asset, EscrowVault, to, amount)
}

// Transfer debits from and credits to. A failed debit moves nothing; both
// sides share the caller's repository transaction, so a failed credit rolls
// the debit back too.
func (l *Ledger) Transfer(asset, from, to string, amount sdkmath.Int) error {
	if from == "" || to == "" {
		return ErrZeroAccount
	}
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil
	}

	if err := l.repo.DebitBalance(asset, from, amount); err != nil {
		if errors.Is(err, repositories.ErrInsufficientFunds) {
			return ErrInsufficientFunds
		}
		return err
	}
	return l.repo.CreditBalance(asset, to, amount)
}

// Mint credits amount of asset to an account out of thin air. Used by the
// seeding CLI; the engine itself never mints.
func (l *Ledger) Mint(asset, account string, amount sdkmath.Int) error {
	if account == "" {
		return ErrZeroAccount
	}
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	return l.repo.CreditBalance(asset, account, amount)
}

// Balance returns the current holdings of account in asset.
func (l *Ledger) Balance(asset, account string) (sdkmath.Int, error) {
	return l.repo.GetBalance(asset, account)
}
