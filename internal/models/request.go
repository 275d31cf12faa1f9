package models

import (
	"time"
)

// RequestStatus is the lifecycle state of a transfer request. The absence of
// a record is the implicit initial state.
type RequestStatus string

const (
	StatusInitiated RequestStatus = "initiated"
	StatusPending   RequestStatus = "pending"
	StatusCancelled RequestStatus = "cancelled"
	StatusExecuted  RequestStatus = "executed"
)

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusExecuted
}

// TransferRequest is one tracked transfer attempt. IDs are assigned
// sequentially by the database starting at 1 and are never reused, even for
// cancelled requests. Fee, AmountFromSender and GasDeposit are fixed at
// initiation and never recomputed.
type TransferRequest struct {
	ID                uint64        `gorm:"primarykey"`
	Sender            string        `gorm:"not null;index"`
	Token             string        `gorm:"not null"`
	Recipient         string        `gorm:"not null"`
	AmountToRecipient Amount        `gorm:"type:numeric(78,0);not null"`
	Fee               Amount        `gorm:"type:numeric(78,0);not null"`
	AmountFromSender  Amount        `gorm:"type:numeric(78,0);not null"`
	GasDeposit        Amount        `gorm:"type:numeric(78,0);not null"`
	RiskScore         uint64        `gorm:"not null;default:0"`
	Status            RequestStatus `gorm:"not null;default:'initiated'"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
