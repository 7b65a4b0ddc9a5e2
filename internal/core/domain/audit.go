package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCallbackAuditMessage is recorded when a callback carries no message.
const DefaultCallbackAuditMessage = "Status changed via callback"

// TransactionAuditLog records a single status transition of a transaction.
// Entries are append-only and never mutated after creation.
type TransactionAuditLog struct {
	ID             uuid.UUID `json:"id"`
	TransactionID  uuid.UUID `json:"transaction_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewStatusTransitionAudit builds the audit entry for a status change.
func NewStatusTransitionAudit(transactionID uuid.UUID, previous, next TransactionStatus, message string) *TransactionAuditLog {
	if message == "" {
		message = DefaultCallbackAuditMessage
	}
	return &TransactionAuditLog{
		ID:             uuid.New(),
		TransactionID:  transactionID,
		PreviousStatus: string(previous),
		NewStatus:      string(next),
		Message:        message,
		CreatedAt:      time.Now().UTC(),
	}
}
