package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MerchantStatus represents the onboarding state of a merchant account.
type MerchantStatus string

const (
	MerchantStatusPending   MerchantStatus = "PENDING"
	MerchantStatusActive    MerchantStatus = "ACTIVE"
	MerchantStatusSuspended MerchantStatus = "SUSPENDED"
	MerchantStatusRejected  MerchantStatus = "REJECTED"
)

// ParseMerchantStatus converts a label to a MerchantStatus.
// Unknown labels are rejected; status values form a closed set.
func ParseMerchantStatus(label string) (MerchantStatus, error) {
	switch MerchantStatus(label) {
	case MerchantStatusPending, MerchantStatusActive, MerchantStatusSuspended, MerchantStatusRejected:
		return MerchantStatus(label), nil
	default:
		return "", fmt.Errorf("unknown merchant status: %q", label)
	}
}

// Merchant represents a registered merchant. The payment engine reads
// merchants but never mutates them; lifecycle is owned by onboarding.
type Merchant struct {
	ID           uuid.UUID      `json:"id"`
	BusinessName string         `json:"business_name"`
	Email        string         `json:"email"`
	Status       MerchantStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsActive returns true if the merchant may receive new payments.
func (m *Merchant) IsActive() bool {
	return m.Status == MerchantStatusActive
}
