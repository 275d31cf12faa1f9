package models

import "time"

// Change-event kinds emitted by the engine and the registry.
const (
	EventRequestInitiated = "request.initiated"
	EventRiskScoreSet     = "request.risk_score_set"
	EventRequestExecuted  = "request.executed"
	EventRequestCancelled = "request.cancelled"

	EventOwnerChanged         = "settings.owner_changed"
	EventOracleChanged        = "settings.oracle_changed"
	EventGasDepositChanged    = "settings.gas_deposit_changed"
	EventFeeRecipientChanged  = "settings.fee_recipient_changed"
	EventGasRecipientChanged  = "settings.gas_recipient_changed"
	EventFeeBPChanged         = "settings.fee_bp_changed"
	EventRiskThresholdChanged = "settings.risk_threshold_changed"

	EventTokenSupported   = "registry.token_supported"
	EventTokenUnsupported = "registry.token_unsupported"
	EventSenderAdded      = "registry.sender_added"
	EventSenderRemoved    = "registry.sender_removed"
	EventRecipientAdded   = "registry.recipient_added"
	EventRecipientRemoved = "registry.recipient_removed"
)

// ChangeEvent is one append-only notification record. Set toggles that do not
// change membership emit nothing.
type ChangeEvent struct {
	ID        uint   `gorm:"primarykey"`
	EventID   string `gorm:"uniqueIndex;not null"`
	Kind      string `gorm:"not null;index"`
	Payload   JSON   `gorm:"type:jsonb"`
	CreatedAt time.Time
}
