package models

import "time"

// Whitelist kinds. Sender and recipient lists are maintained independently.
const (
	WhitelistSenders    = "senders"
	WhitelistRecipients = "recipients"
)

// WhitelistEntry persists membership of one address in one whitelist so the
// in-memory sets survive restarts.
type WhitelistEntry struct {
	ID        uint   `gorm:"primarykey"`
	Kind      string `gorm:"not null;uniqueIndex:idx_kind_address"`
	Address   string `gorm:"not null;uniqueIndex:idx_kind_address"`
	CreatedAt time.Time
}

// SupportedAsset persists one entry of the supported-token set.
type SupportedAsset struct {
	ID        uint   `gorm:"primarykey"`
	Asset     string `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time
}
