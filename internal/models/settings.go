package models

import "time"

const (
	// MaxFeeBP caps the fee rate at 10% in basis points.
	MaxFeeBP = 1000
	// MinRiskThreshold and MaxRiskThreshold bound the configured cutoff.
	// Oracle-assigned scores themselves are not bounded.
	MinRiskThreshold = 1
	MaxRiskThreshold = 100

	// DefaultRiskThreshold applies until the owner configures one.
	DefaultRiskThreshold = 50
)

// Settings is the process-wide configuration singleton, mutated only by the
// owner. A single row with ID 1 backs it.
type Settings struct {
	ID                   uint   `gorm:"primarykey"`
	Owner                string `gorm:"not null"`
	Oracle               string `gorm:"not null"`
	GasDeposit           Amount `gorm:"type:numeric(78,0);not null"`
	FeeRecipient         string `gorm:"not null"`
	GasPaymentsRecipient string `gorm:"not null"`
	FeeBP                uint   `gorm:"not null;default:0"`
	RiskThreshold        uint   `gorm:"not null;default:50"`
	UpdatedAt            time.Time
}
