package models

import (
	"time"

	"gorm.io/gorm"
)

// Account is an authenticated participant. The Address is the identity the
// engine sees as the caller; roles (owner, oracle, whitelists) are resolved
// against addresses, never against account rows.
type Account struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null"`
	Password     string `gorm:"not null"`
	Name         string
	Address      string `gorm:"uniqueIndex;not null"`
	Status       string `gorm:"default:'active'"`
	LastLoginAt  time.Time
	TokenVersion int `gorm:"default:1"`
}
