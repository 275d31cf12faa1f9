package repositories

import "errors"

var (
	ErrRequestNotFound   = errors.New("transfer request not found")
	ErrStatusConflict    = errors.New("request status changed concurrently")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrAccountNotFound   = errors.New("account not found")
	ErrEmailTaken        = errors.New("email already taken")
	ErrSettingsNotFound  = errors.New("settings not initialized")
)
