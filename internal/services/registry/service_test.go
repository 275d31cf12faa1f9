package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/models"
	"custodia/internal/repositories"
)

type fakeRegistryRepo struct {
	mu       sync.Mutex
	settings *models.Settings
	members  map[string][]string
	assets   []string
	failOn   string
}

func newFakeRegistryRepo() *fakeRegistryRepo {
	return &fakeRegistryRepo{
		settings: &models.Settings{
			ID:                   1,
			Owner:                owner,
			Oracle:               oracle,
			GasDeposit:           models.NewAmount(sdkmath.NewInt(5)),
			FeeRecipient:         "acct:fees",
			GasPaymentsRecipient: "acct:gas",
			FeeBP:                10,
			RiskThreshold:        50,
		},
		members: map[string][]string{},
	}
}

func (f *fakeRegistryRepo) LoadSettings() (*models.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		return nil, repositories.ErrSettingsNotFound
	}
	out := *f.settings
	return &out, nil
}

func (f *fakeRegistryRepo) SaveSettings(settings *models.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *settings
	f.settings = &stored
	return nil
}

func (f *fakeRegistryRepo) ListMembers(kind string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.members[kind]...), nil
}

func (f *fakeRegistryRepo) AddMember(kind, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == address {
		return errors.New("write failed")
	}
	f.members[kind] = append(f.members[kind], address)
	return nil
}

func (f *fakeRegistryRepo) RemoveMember(kind, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.members[kind]
	for i, a := range list {
		if a == address {
			f.members[kind] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRegistryRepo) ListAssets() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.assets...), nil
}

func (f *fakeRegistryRepo) AddAsset(asset string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == asset {
		return errors.New("write failed")
	}
	f.assets = append(f.assets, asset)
	return nil
}

func (f *fakeRegistryRepo) RemoveAsset(asset string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.assets {
		if a == asset {
			f.assets = append(f.assets[:i], f.assets[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRegistryRepo) ExecuteInTransaction(fc func(repositories.RegistryRepository) error) error {
	f.mu.Lock()
	members := make(map[string][]string, len(f.members))
	for k, v := range f.members {
		members[k] = append([]string(nil), v...)
	}
	assets := append([]string(nil), f.assets...)
	f.mu.Unlock()

	if err := fc(f); err != nil {
		f.mu.Lock()
		f.members = members
		f.assets = assets
		f.mu.Unlock()
		return err
	}
	return nil
}

type capturedEvent struct {
	kind    string
	payload models.JSON
}

type captureRecorder struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (r *captureRecorder) Emit(_ context.Context, kind string, payload models.JSON) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, capturedEvent{kind: kind, payload: payload})
}

func (r *captureRecorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.kind
	}
	return out
}

const (
	owner  = "acct:owner"
	oracle = "acct:oracle"
)

func newTestRegistry(t *testing.T) (*Service, *fakeRegistryRepo, *captureRecorder) {
	t.Helper()
	repo := newFakeRegistryRepo()
	recorder := &captureRecorder{}
	svc, err := NewService(repo, recorder, zerolog.Nop())
	require.NoError(t, err)
	return svc, repo, recorder
}

func TestNewService_RequiresSeededSettings(t *testing.T) {
	repo := newFakeRegistryRepo()
	repo.settings = nil

	_, err := NewService(repo, nil, zerolog.Nop())
	assert.ErrorIs(t, err, repositories.ErrSettingsNotFound)
}

func TestNewService_LoadsPersistedState(t *testing.T) {
	repo := newFakeRegistryRepo()
	repo.members[models.WhitelistSenders] = []string{"acct:a", "acct:b"}
	repo.members[models.WhitelistRecipients] = []string{"acct:c"}
	repo.assets = []string{"usdx"}

	svc, err := NewService(repo, nil, zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, svc.IsSenderWhitelisted("acct:a"))
	assert.True(t, svc.IsRecipientWhitelisted("acct:c"))
	assert.True(t, svc.IsAssetSupported("usdx"))
	assert.Equal(t, 2, svc.SenderCount())
}

func TestOwnerOnlyMutations(t *testing.T) {
	svc, _, recorder := newTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func(caller string) error
	}{
		{"transfer ownership", func(c string) error { return svc.TransferOwnership(ctx, c, "acct:new") }},
		{"set oracle", func(c string) error { return svc.SetOracle(ctx, c, "acct:new") }},
		{"set gas deposit", func(c string) error { return svc.SetGasDeposit(ctx, c, sdkmath.NewInt(1)) }},
		{"set fee recipient", func(c string) error { return svc.SetFeeRecipient(ctx, c, "acct:new") }},
		{"set gas recipient", func(c string) error { return svc.SetGasPaymentsRecipient(ctx, c, "acct:new") }},
		{"set fee bp", func(c string) error { return svc.SetFeeBP(ctx, c, 20) }},
		{"set risk threshold", func(c string) error { return svc.SetRiskThreshold(ctx, c, 60) }},
		{"set supported asset", func(c string) error { return svc.SetSupportedAsset(ctx, c, "usdx", true) }},
		{"add senders", func(c string) error { return svc.AddSenders(ctx, c, []string{"acct:x"}) }},
		{"remove recipients", func(c string) error { return svc.RemoveRecipients(ctx, c, []string{"acct:x"}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(oracle), ErrNotOwner)
			assert.ErrorIs(t, tt.call(""), ErrNotOwner)
		})
	}
	assert.Empty(t, recorder.kinds(), "rejected calls must not emit events")
}

func TestTransferOwnership(t *testing.T) {
	svc, repo, recorder := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, svc.TransferOwnership(ctx, owner, "acct:new"))

	assert.False(t, svc.IsOwner(owner))
	assert.True(t, svc.IsOwner("acct:new"))
	assert.Equal(t, []string{models.EventOwnerChanged}, recorder.kinds())

	// Persisted, not just in memory.
	stored, err := repo.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "acct:new", stored.Owner)

	// The old owner lost all privileges; the new owner has them.
	assert.ErrorIs(t, svc.SetFeeBP(ctx, owner, 1), ErrNotOwner)
	assert.NoError(t, svc.SetFeeBP(ctx, "acct:new", 1))
}

func TestSettingsValidation(t *testing.T) {
	svc, _, _ := newTestRegistry(t)
	ctx := context.Background()

	t.Run("zero addresses rejected", func(t *testing.T) {
		assert.ErrorIs(t, svc.TransferOwnership(ctx, owner, ""), ErrZeroAddress)
		assert.ErrorIs(t, svc.SetOracle(ctx, owner, ""), ErrZeroAddress)
		assert.ErrorIs(t, svc.SetFeeRecipient(ctx, owner, ""), ErrZeroAddress)
		assert.ErrorIs(t, svc.SetGasPaymentsRecipient(ctx, owner, ""), ErrZeroAddress)
	})

	t.Run("fee bp capped", func(t *testing.T) {
		assert.ErrorIs(t, svc.SetFeeBP(ctx, owner, models.MaxFeeBP+1), ErrFeeTooHigh)
		assert.NoError(t, svc.SetFeeBP(ctx, owner, models.MaxFeeBP))
		assert.NoError(t, svc.SetFeeBP(ctx, owner, 0))
	})

	t.Run("threshold bounded inclusive", func(t *testing.T) {
		assert.ErrorIs(t, svc.SetRiskThreshold(ctx, owner, 0), ErrThresholdOutOfRange)
		assert.ErrorIs(t, svc.SetRiskThreshold(ctx, owner, models.MaxRiskThreshold+1), ErrThresholdOutOfRange)
		assert.NoError(t, svc.SetRiskThreshold(ctx, owner, models.MinRiskThreshold))
		assert.NoError(t, svc.SetRiskThreshold(ctx, owner, models.MaxRiskThreshold))
	})

	t.Run("zero gas deposit allowed", func(t *testing.T) {
		require.NoError(t, svc.SetGasDeposit(ctx, owner, sdkmath.ZeroInt()))
		assert.True(t, svc.Settings().GasDeposit.IsZero())
	})
}

func TestSetSupportedAssets(t *testing.T) {
	svc, _, recorder := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, svc.SetSupportedAssets(ctx, owner, []string{"usdx", "eurx"}, true))
	assert.True(t, svc.IsAssetSupported("usdx"))
	assert.True(t, svc.IsAssetSupported("eurx"))
	assert.Equal(t, []string{models.EventTokenSupported, models.EventTokenSupported}, recorder.kinds())

	// Re-adding is a silent no-op: no write, no event.
	require.NoError(t, svc.SetSupportedAsset(ctx, owner, "usdx", true))
	assert.Len(t, recorder.kinds(), 2)

	require.NoError(t, svc.SetSupportedAsset(ctx, owner, "usdx", false))
	assert.False(t, svc.IsAssetSupported("usdx"))
	assert.True(t, svc.IsAssetSupported("eurx"))
	assert.Equal(t, models.EventTokenUnsupported, recorder.kinds()[2])

	// Removing an absent token is equally silent.
	require.NoError(t, svc.SetSupportedAsset(ctx, owner, "ghost", false))
	assert.Len(t, recorder.kinds(), 3)
}

func TestWhitelistBatchAtomicity(t *testing.T) {
	t.Run("zero address aborts whole batch", func(t *testing.T) {
		svc, _, recorder := newTestRegistry(t)

		err := svc.AddSenders(context.Background(), owner, []string{"acct:a", "", "acct:b"})
		assert.ErrorIs(t, err, ErrZeroAddress)
		assert.False(t, svc.IsSenderWhitelisted("acct:a"))
		assert.False(t, svc.IsSenderWhitelisted("acct:b"))
		assert.Empty(t, recorder.kinds())
	})

	t.Run("storage failure rolls back earlier elements", func(t *testing.T) {
		svc, repo, recorder := newTestRegistry(t)
		repo.failOn = "acct:b"

		err := svc.AddSenders(context.Background(), owner, []string{"acct:a", "acct:b"})
		assert.Error(t, err)
		assert.False(t, svc.IsSenderWhitelisted("acct:a"))
		members, _ := repo.ListMembers(models.WhitelistSenders)
		assert.Empty(t, members)
		assert.Empty(t, recorder.kinds())
	})
}

func TestWhitelistDuplicatesInBatch(t *testing.T) {
	svc, repo, recorder := newTestRegistry(t)
	ctx := context.Background()

	// A repeated identity is one membership change: one row, one event.
	require.NoError(t, svc.AddSenders(ctx, owner, []string{"acct:x", "acct:x"}))
	assert.Equal(t, []string{models.EventSenderAdded}, recorder.kinds())
	members, err := repo.ListMembers(models.WhitelistSenders)
	require.NoError(t, err)
	assert.Equal(t, []string{"acct:x"}, members)
	assert.Equal(t, 1, svc.SenderCount())

	require.NoError(t, svc.RemoveSenders(ctx, owner, []string{"acct:x", "acct:x"}))
	assert.Equal(t, []string{models.EventSenderAdded, models.EventSenderRemoved}, recorder.kinds())
	members, err = repo.ListMembers(models.WhitelistSenders)
	require.NoError(t, err)
	assert.Empty(t, members)

	// Mixed batches dedupe per identity, not per batch.
	require.NoError(t, svc.AddSenders(ctx, owner, []string{"acct:a", "acct:a", "acct:b"}))
	assert.Len(t, recorder.kinds(), 4)
	assert.Equal(t, 2, svc.SenderCount())

	require.NoError(t, svc.SetSupportedAssets(ctx, owner, []string{"usdx", "usdx"}, true))
	assets, err := repo.ListAssets()
	require.NoError(t, err)
	assert.Equal(t, []string{"usdx"}, assets)
}

func TestWhitelistEventsOnlyOnChange(t *testing.T) {
	svc, _, recorder := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, svc.AddSenders(ctx, owner, []string{"acct:a", "acct:b"}))
	assert.Equal(t, []string{models.EventSenderAdded, models.EventSenderAdded}, recorder.kinds())

	// One of the two is already present: exactly one more event.
	require.NoError(t, svc.AddSenders(ctx, owner, []string{"acct:a", "acct:c"}))
	assert.Len(t, recorder.kinds(), 3)

	require.NoError(t, svc.RemoveSenders(ctx, owner, []string{"acct:a", "acct:ghost"}))
	kinds := recorder.kinds()
	assert.Len(t, kinds, 4)
	assert.Equal(t, models.EventSenderRemoved, kinds[3])
	assert.False(t, svc.IsSenderWhitelisted("acct:a"))
	assert.True(t, svc.IsSenderWhitelisted("acct:b"))
	assert.True(t, svc.IsSenderWhitelisted("acct:c"))
}

func TestWhitelistsAreIndependent(t *testing.T) {
	svc, _, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, svc.AddSenders(ctx, owner, []string{"acct:dual"}))
	assert.True(t, svc.IsSenderWhitelisted("acct:dual"))
	assert.False(t, svc.IsRecipientWhitelisted("acct:dual"))

	require.NoError(t, svc.AddRecipients(ctx, owner, []string{"acct:dual"}))
	require.NoError(t, svc.RemoveSenders(ctx, owner, []string{"acct:dual"}))
	assert.False(t, svc.IsSenderWhitelisted("acct:dual"))
	assert.True(t, svc.IsRecipientWhitelisted("acct:dual"))
}

func TestRangeViews(t *testing.T) {
	svc, _, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, svc.AddSenders(ctx, owner, []string{"acct:a", "acct:b", "acct:c"}))

	page, err := svc.SendersRange(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"acct:a", "acct:b"}, page)

	_, err = svc.SendersRange(0, 5)
	assert.Error(t, err)

	all := svc.Senders()
	assert.Equal(t, 3, len(all))
	assert.Equal(t, svc.SenderCount(), len(all))
}

func TestOracleRoleFollowsSettings(t *testing.T) {
	svc, _, _ := newTestRegistry(t)
	ctx := context.Background()

	assert.True(t, svc.IsOracle(oracle))
	require.NoError(t, svc.SetOracle(ctx, owner, "acct:newOracle"))
	assert.False(t, svc.IsOracle(oracle))
	assert.True(t, svc.IsOracle("acct:newOracle"))
	assert.False(t, svc.IsOracle(""))
}
