// Package registry owns the configuration singleton, the sender and recipient
// whitelists and the supported-token set. It is the access gate's source of
// truth: the engine asks it who the owner and oracle are and who may
// participate. Reads come from memory; mutations write through to Postgres
// and emit change events.
package registry

import (
	"context"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"custodia/internal/memberset"
	"custodia/internal/models"
	"custodia/internal/repositories"
	"custodia/internal/services/events"
)

// Service is safe for concurrent use. Every mutator is owner-only; violation
// leaves all state untouched.
type Service struct {
	mu         sync.RWMutex
	repo       repositories.RegistryRepository
	events     events.Recorder
	logger     zerolog.Logger
	settings   models.Settings
	assets     *memberset.Set
	senders    *memberset.Set
	recipients *memberset.Set
}

// NewService loads the settings singleton and the membership sets from the
// repository. Settings must have been seeded (see cmd/seed).
func NewService(repo repositories.RegistryRepository, recorder events.Recorder, logger zerolog.Logger) (*Service, error) {
	if repo == nil {
		panic("registry repository is required")
	}
	if recorder == nil {
		recorder = events.Noop{}
	}

	settings, err := repo.LoadSettings()
	if err != nil {
		return nil, err
	}

	assets, err := repo.ListAssets()
	if err != nil {
		return nil, err
	}
	senders, err := repo.ListMembers(models.WhitelistSenders)
	if err != nil {
		return nil, err
	}
	recipients, err := repo.ListMembers(models.WhitelistRecipients)
	if err != nil {
		return nil, err
	}

	return &Service{
		repo:       repo,
		events:     recorder,
		logger:     logger,
		settings:   *settings,
		assets:     memberset.New(assets...),
		senders:    memberset.New(senders...),
		recipients: memberset.New(recipients...),
	}, nil
}

// Settings returns a copy of the current configuration.
func (s *Service) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Service) IsOwner(address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return address != "" && address == s.settings.Owner
}

func (s *Service) IsOracle(address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return address != "" && address == s.settings.Oracle
}

func (s *Service) IsSenderWhitelisted(address string) bool    { return s.senders.Contains(address) }
func (s *Service) IsRecipientWhitelisted(address string) bool { return s.recipients.Contains(address) }
func (s *Service) IsAssetSupported(asset string) bool         { return s.assets.Contains(asset) }

// Enumeration views for pagination.
func (s *Service) Senders() []string    { return s.senders.Values() }
func (s *Service) Recipients() []string { return s.recipients.Values() }
func (s *Service) Assets() []string     { return s.assets.Values() }

func (s *Service) SenderCount() int    { return s.senders.Len() }
func (s *Service) RecipientCount() int { return s.recipients.Len() }
func (s *Service) AssetCount() int     { return s.assets.Len() }

func (s *Service) SendersRange(from, to int) ([]string, error) { return s.senders.Range(from, to) }
func (s *Service) RecipientsRange(from, to int) ([]string, error) {
	return s.recipients.Range(from, to)
}
func (s *Service) AssetsRange(from, to int) ([]string, error) { return s.assets.Range(from, to) }

// TransferOwnership hands the owner role to a new address. Only the current
// owner may do this.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner string) error {
	if newOwner == "" {
		return ErrZeroAddress
	}
	return s.updateSettings(ctx, caller, models.EventOwnerChanged,
		func(cfg *models.Settings) models.JSON {
			old := cfg.Owner
			cfg.Owner = newOwner
			return models.JSON{"old": old, "new": newOwner}
		})
}

func (s *Service) SetOracle(ctx context.Context, caller, oracle string) error {
	if oracle == "" {
		return ErrZeroAddress
	}
	return s.updateSettings(ctx, caller, models.EventOracleChanged,
		func(cfg *models.Settings) models.JSON {
			old := cfg.Oracle
			cfg.Oracle = oracle
			return models.JSON{"old": old, "new": oracle}
		})
}

// SetGasDeposit updates the required side-payment amount. Zero is allowed.
func (s *Service) SetGasDeposit(ctx context.Context, caller string, amount sdkmath.Int) error {
	return s.updateSettings(ctx, caller, models.EventGasDepositChanged,
		func(cfg *models.Settings) models.JSON {
			old := cfg.GasDeposit.String()
			cfg.GasDeposit = models.NewAmount(amount)
			return models.JSON{"old": old, "new": amount.String()}
		})
}

func (s *Service) SetFeeRecipient(ctx context.Context, caller, recipient string) error {
	if recipient == "" {
		return ErrZeroAddress
	}
	return s.updateSettings(ctx, caller, models.EventFeeRecipientChanged,
		func(cfg *models.Settings) models.JSON {
			old := cfg.FeeRecipient
			cfg.FeeRecipient = recipient
			return models.JSON{"old": old, "new": recipient}
		})
}

func (s *Service) SetGasPaymentsRecipient(ctx context.Context, caller, recipient string) error {
	if recipient == "" {
		return ErrZeroAddress
	}
	return s.updateSettings(ctx, caller, models.EventGasRecipientChanged,
		func(cfg *models.Settings) models.JSON {
			old := cfg.GasPaymentsRecipient
			cfg.GasPaymentsRecipient = recipient
			return models.JSON{"old": old, "new": recipient}
		})
}

func (s *Service) SetFeeBP(ctx context.Context, caller string, feeBP uint) error {
	if feeBP > models.MaxFeeBP {
		return ErrFeeTooHigh
	}
	return s.updateSettings(ctx, caller, models.EventFeeBPChanged,
		func(cfg *models.Settings) models.JSON {
			old := cfg.FeeBP
			cfg.FeeBP = feeBP
			return models.JSON{"old": old, "new": feeBP}
		})
}

func (s *Service) SetRiskThreshold(ctx context.Context, caller string, threshold uint) error {
	if threshold < models.MinRiskThreshold || threshold > models.MaxRiskThreshold {
		return ErrThresholdOutOfRange
	}
	return s.updateSettings(ctx, caller, models.EventRiskThresholdChanged,
		func(cfg *models.Settings) models.JSON {
			old := cfg.RiskThreshold
			cfg.RiskThreshold = threshold
			return models.JSON{"old": old, "new": threshold}
		})
}

func (s *Service) updateSettings(ctx context.Context, caller, eventKind string, mutate func(*models.Settings) models.JSON) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller == "" || caller != s.settings.Owner {
		return ErrNotOwner
	}

	updated := s.settings
	payload := mutate(&updated)
	if err := s.repo.SaveSettings(&updated); err != nil {
		return err
	}
	s.settings = updated

	s.events.Emit(ctx, eventKind, payload)
	return nil
}

// SetSupportedAsset toggles support for one token. Toggling to the current
// state is a silent no-op.
func (s *Service) SetSupportedAsset(ctx context.Context, caller, asset string, supported bool) error {
	return s.SetSupportedAssets(ctx, caller, []string{asset}, supported)
}

// SetSupportedAssets applies the toggle element-wise. Any zero identity
// aborts the whole batch with no partial mutation.
func (s *Service) SetSupportedAssets(ctx context.Context, caller string, assets []string, supported bool) error {
	return s.mutateSet(ctx, caller, assets, supported, s.assets, setHooks{
		add:         func(r repositories.RegistryRepository, id string) error { return r.AddAsset(id) },
		remove:      func(r repositories.RegistryRepository, id string) error { return r.RemoveAsset(id) },
		addEvent:    models.EventTokenSupported,
		removeEvent: models.EventTokenUnsupported,
		field:       "token",
	})
}

// AddSenders whitelists sender addresses; RemoveSenders clears them. Both are
// batch-atomic and emit one event per address that actually changed.
func (s *Service) AddSenders(ctx context.Context, caller string, addresses []string) error {
	return s.mutateWhitelist(ctx, caller, models.WhitelistSenders, addresses, true)
}

func (s *Service) RemoveSenders(ctx context.Context, caller string, addresses []string) error {
	return s.mutateWhitelist(ctx, caller, models.WhitelistSenders, addresses, false)
}

func (s *Service) AddRecipients(ctx context.Context, caller string, addresses []string) error {
	return s.mutateWhitelist(ctx, caller, models.WhitelistRecipients, addresses, true)
}

func (s *Service) RemoveRecipients(ctx context.Context, caller string, addresses []string) error {
	return s.mutateWhitelist(ctx, caller, models.WhitelistRecipients, addresses, false)
}

func (s *Service) mutateWhitelist(ctx context.Context, caller, kind string, addresses []string, add bool) error {
	set := s.senders
	addEvent, removeEvent := models.EventSenderAdded, models.EventSenderRemoved
	if kind == models.WhitelistRecipients {
		set = s.recipients
		addEvent, removeEvent = models.EventRecipientAdded, models.EventRecipientRemoved
	}
	return s.mutateSet(ctx, caller, addresses, add, set, setHooks{
		add:         func(r repositories.RegistryRepository, id string) error { return r.AddMember(kind, id) },
		remove:      func(r repositories.RegistryRepository, id string) error { return r.RemoveMember(kind, id) },
		addEvent:    addEvent,
		removeEvent: removeEvent,
		field:       "address",
	})
}

type setHooks struct {
	add         func(repositories.RegistryRepository, string) error
	remove      func(repositories.RegistryRepository, string) error
	addEvent    string
	removeEvent string
	field       string
}

func (s *Service) mutateSet(ctx context.Context, caller string, ids []string, add bool, set *memberset.Set, hooks setHooks) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller == "" || caller != s.settings.Owner {
		return ErrNotOwner
	}

	// Validate the whole batch before touching anything.
	for _, id := range ids {
		if id == "" {
			return ErrZeroAddress
		}
	}

	// Persist only the elements that change membership, in one transaction.
	// Repeats of an identity within the batch count as one change; the later
	// occurrences toggle to the already-staged state and are no-ops.
	var changed []string
	staged := make(map[string]bool, len(ids))
	for _, id := range ids {
		if staged[id] {
			continue
		}
		if set.Contains(id) != add {
			staged[id] = true
			changed = append(changed, id)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	err := s.repo.ExecuteInTransaction(func(tx repositories.RegistryRepository) error {
		for _, id := range changed {
			var err error
			if add {
				err = hooks.add(tx, id)
			} else {
				err = hooks.remove(tx, id)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	kind := hooks.removeEvent
	if add {
		kind = hooks.addEvent
	}
	for _, id := range changed {
		if add {
			set.Add(id)
		} else {
			set.Remove(id)
		}
		s.events.Emit(ctx, kind, models.JSON{hooks.field: id})
	}
	return nil
}
