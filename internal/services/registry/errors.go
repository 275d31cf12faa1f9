package registry

import "errors"

var (
	ErrNotOwner            = errors.New("caller is not the owner")
	ErrZeroAddress         = errors.New("zero address")
	ErrFeeTooHigh          = errors.New("fee basis points above maximum")
	ErrThresholdOutOfRange = errors.New("risk threshold out of range")
)
