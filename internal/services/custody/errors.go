package custody

import "errors"

var (
	ErrInvalidAmount     = errors.New("custody: amount must not be negative")
	ErrInsufficientFunds = errors.New("custody: insufficient funds")
	ErrZeroAccount       = errors.New("custody: zero account")
)
