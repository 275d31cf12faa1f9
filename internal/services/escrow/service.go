// Package escrow implements the request lifecycle: deposit, oracle scoring,
// and release or refund. Each request moves through a bounded state machine
// (initiated, pending, then executed or cancelled) and every transition
// commits together with its asset movement as one database transaction.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"custodia/internal/models"
	"custodia/internal/repositories"
	"custodia/internal/services/custody"
	"custodia/internal/services/events"
)

const feeDenominator = 10000

type service struct {
	// mu serializes all state-changing calls; together with the guarded
	// status updates it gives each operation the all-or-nothing, fully
	// linearized semantics a ledger would provide.
	mu      sync.Mutex
	repo    repositories.EscrowRepository
	gate    Gate
	events  events.Recorder
	cache   Cache
	metrics MetricsCollector
	logger  zerolog.Logger
}

func NewService(
	repo repositories.EscrowRepository,
	gate Gate,
	recorder events.Recorder,
	cache Cache,
	metrics MetricsCollector,
	logger zerolog.Logger,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if gate == nil {
		panic("gate is required")
	}
	if recorder == nil {
		recorder = events.Noop{}
	}
	if cache == nil {
		cache = noopCache{}
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}

	return &service{
		repo:    repo,
		gate:    gate,
		events:  recorder,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// computeFee applies the basis-point rate with floor semantics.
func computeFee(amount models.Amount, feeBP uint) models.Amount {
	fee := amount.MulRaw(int64(feeBP)).QuoRaw(feeDenominator)
	return models.NewAmount(fee)
}

func (s *service) Initiate(ctx context.Context, caller string, in InitiateInput) (*models.TransferRequest, error) {
	defer s.observe("initiate", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.gate.Settings()

	if !s.gate.IsSenderWhitelisted(caller) {
		return nil, s.fail("initiate", ErrSenderNotWhitelisted)
	}
	if in.Recipient == "" {
		return nil, s.fail("initiate", ErrZeroAddress)
	}
	if !s.gate.IsRecipientWhitelisted(in.Recipient) {
		return nil, s.fail("initiate", ErrRecipientNotWhitelisted)
	}
	if in.Amount.IsNil() || !in.Amount.IsPositive() {
		return nil, s.fail("initiate", ErrZeroAmount)
	}
	gasPayment := in.GasPayment
	if gasPayment.IsNil() {
		gasPayment = models.ZeroAmount().Int
	}
	if !gasPayment.Equal(cfg.GasDeposit.Int) {
		return nil, s.fail("initiate", ErrWrongGasPayment)
	}
	if !s.gate.IsAssetSupported(in.Token) {
		return nil, s.fail("initiate", ErrUnsupportedToken)
	}

	amount := models.NewAmount(in.Amount)
	fee := computeFee(amount, cfg.FeeBP)
	gross := models.NewAmount(amount.Add(fee.Int))

	req := &models.TransferRequest{
		Sender:            caller,
		Token:             in.Token,
		Recipient:         in.Recipient,
		AmountToRecipient: amount,
		Fee:               fee,
		AmountFromSender:  gross,
		GasDeposit:        cfg.GasDeposit,
		Status:            models.StatusInitiated,
	}

	err := s.repo.ExecuteInTransaction(func(tx repositories.EscrowRepository) error {
		if err := tx.CreateRequest(req); err != nil {
			return err
		}
		ledger := custody.NewLedger(tx)
		if err := ledger.Deposit(in.Token, caller, gross.Int); err != nil {
			return err
		}
		// The gas deposit goes straight through to its recipient; it is
		// never held in escrow and never refunded.
		return ledger.Transfer(custody.NativeAsset, caller, cfg.GasPaymentsRecipient, gasPayment)
	})
	if err != nil {
		return nil, s.custodyError("initiate", err)
	}

	s.logger.Info().
		Uint64("id", req.ID).
		Str("sender", caller).
		Str("token", in.Token).
		Str("recipient", in.Recipient).
		Str("amount_from_sender", gross.String()).
		Str("fee", fee.String()).
		Msg("request initiated")

	s.events.Emit(ctx, models.EventRequestInitiated, models.JSON{
		"id":                 req.ID,
		"sender":             caller,
		"token":              in.Token,
		"recipient":          in.Recipient,
		"amount_from_sender": gross.String(),
		"fee":                fee.String(),
	})
	s.metrics.RecordOperationResult("initiate", "ok")
	return req, nil
}

func (s *service) SetRiskScore(ctx context.Context, caller string, id uint64, score uint64) error {
	defer s.observe("set_risk_score", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.gate.IsOracle(caller) {
		return s.fail("set_risk_score", ErrNotOracle)
	}

	req, err := s.repo.GetRequest(id)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return s.fail("set_risk_score", ErrNotInitiated)
		}
		return err
	}
	if req.Status != models.StatusInitiated {
		return s.fail("set_risk_score", ErrNotInitiated)
	}

	if err := s.repo.AssignRiskScore(id, score); err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			return s.fail("set_risk_score", ErrNotInitiated)
		}
		return err
	}
	s.cache.InvalidateRequest(ctx, id)

	s.logger.Info().Uint64("id", id).Uint64("score", score).Msg("risk score set")
	s.events.Emit(ctx, models.EventRiskScoreSet, models.JSON{"id": id, "score": score})
	s.metrics.RecordOperationResult("set_risk_score", "ok")
	return nil
}

func (s *service) Execute(ctx context.Context, caller string, id uint64) (bool, error) {
	defer s.observe("execute", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.repo.GetRequest(id)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return false, s.fail("execute", ErrNotPending)
		}
		return false, err
	}
	if req.Status != models.StatusPending {
		return false, s.fail("execute", ErrNotPending)
	}

	// The decision uses the threshold configured now, not the one configured
	// at initiation. Whitelist membership is deliberately not re-checked.
	cfg := s.gate.Settings()
	approved := req.RiskScore < uint64(cfg.RiskThreshold)

	err = s.repo.ExecuteInTransaction(func(tx repositories.EscrowRepository) error {
		// Status flips before funds move so a re-entrant or racing call
		// sees the terminal state and fails the pending check.
		if err := tx.UpdateStatusFrom(id, models.StatusExecuted, models.StatusPending); err != nil {
			return err
		}
		ledger := custody.NewLedger(tx)
		if approved {
			if err := ledger.Release(req.Token, cfg.FeeRecipient, req.Fee.Int); err != nil {
				return err
			}
			return ledger.Release(req.Token, req.Recipient, req.AmountToRecipient.Int)
		}
		return ledger.Release(req.Token, req.Sender, req.AmountFromSender.Int)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			return false, s.fail("execute", ErrNotPending)
		}
		return false, s.custodyError("execute", err)
	}
	s.cache.InvalidateRequest(ctx, id)

	s.logger.Info().
		Uint64("id", id).
		Bool("approved", approved).
		Uint64("score", req.RiskScore).
		Uint("threshold", cfg.RiskThreshold).
		Msg("request executed")

	s.events.Emit(ctx, models.EventRequestExecuted, models.JSON{"id": id, "approved": approved})
	s.metrics.RecordSettlement(approved, req.Token)
	s.metrics.RecordOperationResult("execute", "ok")
	return approved, nil
}

func (s *service) Cancel(ctx context.Context, caller string, id uint64) error {
	defer s.observe("cancel", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.repo.GetRequest(id)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return s.fail("cancel", ErrNotPendingNorInitiated)
		}
		return err
	}
	if caller != req.Sender && !s.gate.IsOwner(caller) {
		return s.fail("cancel", ErrNotRequestOwner)
	}
	if req.Status.Terminal() {
		return s.fail("cancel", ErrNotPendingNorInitiated)
	}

	err = s.repo.ExecuteInTransaction(func(tx repositories.EscrowRepository) error {
		if err := tx.UpdateStatusFrom(id, models.StatusCancelled, models.StatusInitiated, models.StatusPending); err != nil {
			return err
		}
		// Escrowed funds go back to the sender; the gas deposit stays with
		// its recipient.
		return custody.NewLedger(tx).Release(req.Token, req.Sender, req.AmountFromSender.Int)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			return s.fail("cancel", ErrNotPendingNorInitiated)
		}
		return s.custodyError("cancel", err)
	}
	s.cache.InvalidateRequest(ctx, id)

	s.logger.Info().Uint64("id", id).Str("by", caller).Msg("request cancelled")
	s.events.Emit(ctx, models.EventRequestCancelled, models.JSON{"id": id})
	s.metrics.RecordOperationResult("cancel", "ok")
	return nil
}

func (s *service) GetRequest(ctx context.Context, id uint64) (*models.TransferRequest, error) {
	if req, err := s.cache.GetRequest(ctx, id); err == nil {
		return req, nil
	}

	req, err := s.repo.GetRequest(id)
	if err != nil {
		return nil, err
	}
	s.cache.SetRequest(ctx, req)
	return req, nil
}

func (s *service) NextRequestID(ctx context.Context) (uint64, error) {
	return s.repo.NextRequestID()
}

func (s *service) observe(op string, start time.Time) {
	s.metrics.RecordOperationDuration(op, time.Since(start))
}

func (s *service) fail(op string, err error) error {
	s.metrics.RecordError(op, err.Error())
	return err
}

func (s *service) custodyError(op string, err error) error {
	s.metrics.RecordError(op, "custody")
	s.logger.Error().Err(err).Str("operation", op).Msg("operation rolled back")
	return fmt.Errorf("%w: %v", ErrCustodyFailed, err)
}

type noopCache struct{}

func (noopCache) GetRequest(context.Context, uint64) (*models.TransferRequest, error) {
	return nil, errors.New("cache disabled")
}
func (noopCache) SetRequest(context.Context, *models.TransferRequest) error { return nil }
func (noopCache) InvalidateRequest(context.Context, uint64) error           { return nil }
