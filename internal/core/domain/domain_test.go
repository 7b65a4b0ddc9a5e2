package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMerchantStatus(t *testing.T) {
	for _, label := range []string{"PENDING", "ACTIVE", "SUSPENDED", "REJECTED"} {
		s, err := ParseMerchantStatus(label)
		require.NoError(t, err, label)
		assert.Equal(t, MerchantStatus(label), s)
	}
}

func TestParseMerchantStatus_RejectsUnknown(t *testing.T) {
	for _, label := range []string{"", "active", "DELETED", "Pending"} {
		_, err := ParseMerchantStatus(label)
		assert.Error(t, err, label)
	}
}

func TestMerchant_IsActive(t *testing.T) {
	m := &Merchant{Status: MerchantStatusActive}
	assert.True(t, m.IsActive())

	for _, s := range []MerchantStatus{MerchantStatusPending, MerchantStatusSuspended, MerchantStatusRejected} {
		m.Status = s
		assert.False(t, m.IsActive(), s)
	}
}

func TestParseTransactionStatus(t *testing.T) {
	for _, label := range []string{"PENDING", "SUCCESS", "FAILED", "CANCELLED", "REFUNDED"} {
		s, err := ParseTransactionStatus(label)
		require.NoError(t, err, label)
		assert.Equal(t, TransactionStatus(label), s)
	}
}

func TestParseTransactionStatus_RejectsUnknown(t *testing.T) {
	for _, label := range []string{"", "success", "REVERSED", "Success "} {
		_, err := ParseTransactionStatus(label)
		assert.Error(t, err, label)
	}
}

func TestTransactionStatus_IsCallbackTarget(t *testing.T) {
	assert.True(t, TransactionStatusSuccess.IsCallbackTarget())
	assert.True(t, TransactionStatusFailed.IsCallbackTarget())

	assert.False(t, TransactionStatusPending.IsCallbackTarget())
	assert.False(t, TransactionStatusCancelled.IsCallbackTarget())
	assert.False(t, TransactionStatusRefunded.IsCallbackTarget())
}

func TestTransaction_IsPending(t *testing.T) {
	txn := &Transaction{Status: TransactionStatusPending}
	assert.True(t, txn.IsPending())

	txn.Status = TransactionStatusSuccess
	assert.False(t, txn.IsPending())
}

func TestNewStatusTransitionAudit(t *testing.T) {
	txID := uuid.New()
	entry := NewStatusTransitionAudit(txID, TransactionStatusPending, TransactionStatusSuccess, "gateway confirmed")

	assert.Equal(t, txID, entry.TransactionID)
	assert.Equal(t, "PENDING", entry.PreviousStatus)
	assert.Equal(t, "SUCCESS", entry.NewStatus)
	assert.Equal(t, "gateway confirmed", entry.Message)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestNewStatusTransitionAudit_DefaultMessage(t *testing.T) {
	entry := NewStatusTransitionAudit(uuid.New(), TransactionStatusPending, TransactionStatusFailed, "")
	assert.Equal(t, DefaultCallbackAuditMessage, entry.Message)
}
