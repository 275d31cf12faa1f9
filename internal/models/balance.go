package models

import "time"

// Balance is one (asset, account) custody row. The engine's escrowed funds
// live under the escrow vault account; everything else belongs to
// participants.
type Balance struct {
	ID        uint   `gorm:"primarykey"`
	Asset     string `gorm:"not null;uniqueIndex:idx_asset_account"`
	Account   string `gorm:"not null;uniqueIndex:idx_asset_account"`
	Amount    Amount `gorm:"type:numeric(78,0);not null"`
	UpdatedAt time.Time
}
