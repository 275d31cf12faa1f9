package custody

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/models"
	"custodia/internal/repositories"
)

// fakeBalances implements the balance side of the repository; the request
// methods are unused by the ledger.
type fakeBalances struct {
	balances map[string]sdkmath.Int
}

func newFakeBalances() *fakeBalances {
	return &fakeBalances{balances: make(map[string]sdkmath.Int)}
}

func key(asset, account string) string { return asset + "/" + account }

func (f *fakeBalances) GetBalance(asset, account string) (sdkmath.Int, error) {
	if b, ok := f.balances[key(asset, account)]; ok {
		return b, nil
	}
	return sdkmath.ZeroInt(), nil
}

func (f *fakeBalances) CreditBalance(asset, account string, amount sdkmath.Int) error {
	k := key(asset, account)
	current, ok := f.balances[k]
	if !ok {
		current = sdkmath.ZeroInt()
	}
	f.balances[k] = current.Add(amount)
	return nil
}

func (f *fakeBalances) DebitBalance(asset, account string, amount sdkmath.Int) error {
	k := key(asset, account)
	current, ok := f.balances[k]
	if !ok || current.LT(amount) {
		return repositories.ErrInsufficientFunds
	}
	f.balances[k] = current.Sub(amount)
	return nil
}

func (f *fakeBalances) CreateRequest(*models.TransferRequest) error { return nil }
func (f *fakeBalances) GetRequest(uint64) (*models.TransferRequest, error) {
	return nil, repositories.ErrRequestNotFound
}
func (f *fakeBalances) NextRequestID() (uint64, error) { return 1, nil }
func (f *fakeBalances) UpdateStatusFrom(uint64, models.RequestStatus, ...models.RequestStatus) error {
	return nil
}
func (f *fakeBalances) AssignRiskScore(uint64, uint64) error { return nil }
func (f *fakeBalances) ExecuteInTransaction(fc func(repositories.EscrowRepository) error) error {
	return fc(f)
}

func TestTransfer(t *testing.T) {
	repo := newFakeBalances()
	ledger := NewLedger(repo)
	require.NoError(t, ledger.Mint("usdx", "acct:a", sdkmath.NewInt(100)))

	t.Run("moves funds", func(t *testing.T) {
		require.NoError(t, ledger.Transfer("usdx", "acct:a", "acct:b", sdkmath.NewInt(30)))

		a, _ := ledger.Balance("usdx", "acct:a")
		b, _ := ledger.Balance("usdx", "acct:b")
		assert.True(t, sdkmath.NewInt(70).Equal(a))
		assert.True(t, sdkmath.NewInt(30).Equal(b))
	})

	t.Run("insufficient funds moves nothing", func(t *testing.T) {
		err := ledger.Transfer("usdx", "acct:a", "acct:b", sdkmath.NewInt(1000))
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		a, _ := ledger.Balance("usdx", "acct:a")
		b, _ := ledger.Balance("usdx", "acct:b")
		assert.True(t, sdkmath.NewInt(70).Equal(a))
		assert.True(t, sdkmath.NewInt(30).Equal(b))
	})

	t.Run("zero amount is a no-op", func(t *testing.T) {
		require.NoError(t, ledger.Transfer("usdx", "acct:a", "acct:b", sdkmath.ZeroInt()))
		a, _ := ledger.Balance("usdx", "acct:a")
		assert.True(t, sdkmath.NewInt(70).Equal(a))
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		err := ledger.Transfer("usdx", "acct:a", "acct:b", sdkmath.NewInt(-1))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("zero accounts rejected", func(t *testing.T) {
		assert.ErrorIs(t, ledger.Transfer("usdx", "", "acct:b", sdkmath.NewInt(1)), ErrZeroAccount)
		assert.ErrorIs(t, ledger.Transfer("usdx", "acct:a", "", sdkmath.NewInt(1)), ErrZeroAccount)
	})

	t.Run("assets are isolated", func(t *testing.T) {
		err := ledger.Transfer("eurx", "acct:a", "acct:b", sdkmath.NewInt(1))
		assert.ErrorIs(t, err, ErrInsufficientFunds, "usdx holdings must not cover eurx debits")
	})
}

func TestDepositRelease(t *testing.T) {
	repo := newFakeBalances()
	ledger := NewLedger(repo)
	require.NoError(t, ledger.Mint("usdx", "acct:a", sdkmath.NewInt(50)))

	require.NoError(t, ledger.Deposit("usdx", "acct:a", sdkmath.NewInt(50)))
	vault, _ := ledger.Balance("usdx", EscrowVault)
	assert.True(t, sdkmath.NewInt(50).Equal(vault))

	require.NoError(t, ledger.Release("usdx", "acct:b", sdkmath.NewInt(20)))
	vault, _ = ledger.Balance("usdx", EscrowVault)
	b, _ := ledger.Balance("usdx", "acct:b")
	assert.True(t, sdkmath.NewInt(30).Equal(vault))
	assert.True(t, sdkmath.NewInt(20).Equal(b))

	err := ledger.Release("usdx", "acct:b", sdkmath.NewInt(31))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestMint(t *testing.T) {
	ledger := NewLedger(newFakeBalances())

	assert.ErrorIs(t, ledger.Mint("usdx", "", sdkmath.NewInt(1)), ErrZeroAccount)
	assert.ErrorIs(t, ledger.Mint("usdx", "acct:a", sdkmath.NewInt(-1)), ErrInvalidAmount)

	require.NoError(t, ledger.Mint("usdx", "acct:a", sdkmath.NewInt(7)))
	require.NoError(t, ledger.Mint("usdx", "acct:a", sdkmath.NewInt(3)))
	got, err := ledger.Balance("usdx", "acct:a")
	require.NoError(t, err)
	assert.True(t, sdkmath.NewInt(10).Equal(got))
}
