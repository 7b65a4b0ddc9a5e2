package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a payment transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusSuccess   TransactionStatus = "SUCCESS"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

// ParseTransactionStatus converts a label to a TransactionStatus.
// Unknown labels are rejected; status values form a closed set.
func ParseTransactionStatus(label string) (TransactionStatus, error) {
	switch TransactionStatus(label) {
	case TransactionStatusPending, TransactionStatusSuccess, TransactionStatusFailed,
		TransactionStatusCancelled, TransactionStatusRefunded:
		return TransactionStatus(label), nil
	default:
		return "", fmt.Errorf("unknown transaction status: %q", label)
	}
}

// IsCallbackTarget returns true for statuses a gateway callback may set.
// Cancelled and Refunded exist in the model but are reserved for
// operator tooling; no callback reaches them.
func (s TransactionStatus) IsCallbackTarget() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed
}

// Transaction represents a merchant payment transaction.
type Transaction struct {
	ID                  uuid.UUID         `json:"id"`
	MerchantID          uuid.UUID         `json:"merchant_id"`
	Amount              decimal.Decimal   `json:"amount"`
	Currency            string            `json:"currency"`
	Status              TransactionStatus `json:"status"`
	ExternalReferenceID *string           `json:"external_reference_id,omitempty"`
	IdempotencyKey      *string           `json:"idempotency_key,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// IsPending returns true if the transaction can still be finalized.
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}
