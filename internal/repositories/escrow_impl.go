package repositories

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"gorm.io/gorm"

	"custodia/internal/models"
)

type escrowRepository struct {
	db *gorm.DB
}

func NewEscrowRepository(db *gorm.DB) EscrowRepository {
	return &escrowRepository{db: db}
}

func (r *escrowRepository) CreateRequest(req *models.TransferRequest) error {
	if err := r.db.Create(req).Error; err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (r *escrowRepository) GetRequest(id uint64) (*models.TransferRequest, error) {
	var req models.TransferRequest
	if err := r.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &req, nil
}

func (r *escrowRepository) NextRequestID() (uint64, error) {
	var maxID uint64
	err := r.db.Model(&models.TransferRequest{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read request counter: %w", err)
	}
	return maxID + 1, nil
}

func (r *escrowRepository) UpdateStatusFrom(id uint64, to models.RequestStatus, from ...models.RequestStatus) error {
	result := r.db.Model(&models.TransferRequest{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return fmt.Errorf("failed to update request status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *escrowRepository) AssignRiskScore(id uint64, score uint64) error {
	result := r.db.Model(&models.TransferRequest{}).
		Where("id = ? AND status = ?", id, models.StatusInitiated).
		Updates(map[string]interface{}{
			"risk_score": score,
			"status":     models.StatusPending,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to assign risk score: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *escrowRepository) GetBalance(asset, account string) (sdkmath.Int, error) {
	var balance models.Balance
	err := r.db.Where("asset = ? AND account = ?", asset, account).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sdkmath.ZeroInt(), nil
		}
		return sdkmath.ZeroInt(), fmt.Errorf("failed to get balance: %w", err)
	}
	return balance.Amount.Int, nil
}

func (r *escrowRepository) CreditBalance(asset, account string, amount sdkmath.Int) error {
	var balance models.Balance
	err := r.db.Where("asset = ? AND account = ?", asset, account).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = models.Balance{Asset: asset, Account: account, Amount: models.NewAmount(amount)}
		if err := r.db.Create(&balance).Error; err != nil {
			return fmt.Errorf("failed to create balance: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}

	balance.Amount = models.NewAmount(balance.Amount.Add(amount))
	if err := r.db.Save(&balance).Error; err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	return nil
}

func (r *escrowRepository) DebitBalance(asset, account string, amount sdkmath.Int) error {
	var balance models.Balance
	err := r.db.Where("asset = ? AND account = ?", asset, account).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInsufficientFunds
		}
		return fmt.Errorf("failed to get balance: %w", err)
	}

	if balance.Amount.LT(amount) {
		return ErrInsufficientFunds
	}
	balance.Amount = models.NewAmount(balance.Amount.Sub(amount))
	if err := r.db.Save(&balance).Error; err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}
	return nil
}

func (r *escrowRepository) ExecuteInTransaction(fc func(EscrowRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fc(&escrowRepository{db: tx})
	})
}
