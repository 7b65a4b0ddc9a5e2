package dto

import (
	"time"

	"merchant-payment-service/internal/core/domain"

	"github.com/shopspring/decimal"
)

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public representation of a user account.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"` // Unix timestamp
	User      UserResponse `json:"user"`
}

// CreateMerchantRequest is the request body for merchant registration.
type CreateMerchantRequest struct {
	BusinessName string `json:"business_name" binding:"required,min=1,max=100"`
	Email        string `json:"email" binding:"required,email,max=254"`
}

// UpdateMerchantRequest is the request body for merchant updates.
// Omitted fields are left unchanged.
type UpdateMerchantRequest struct {
	BusinessName string `json:"business_name" binding:"omitempty,min=1,max=100"`
	Email        string `json:"email" binding:"omitempty,email,max=254"`
}

// UpdateMerchantStatusRequest is the request body for status transitions.
// The label is validated against the closed status set by the service.
type UpdateMerchantStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// MerchantResponse is the public representation of a merchant.
type MerchantResponse struct {
	ID           string `json:"id"`
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// CreatePaymentRequest is the request body for payment creation.
type CreatePaymentRequest struct {
	MerchantID     string          `json:"merchant_id" binding:"required,uuid"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Currency       string          `json:"currency" binding:"required,currency_code"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty" binding:"omitempty,min=1,max=100"`
}

// CallbackRequest is the request body for gateway callbacks. Only the
// two terminal callback statuses are accepted.
type CallbackRequest struct {
	TransactionID       string  `json:"transaction_id" binding:"required,uuid"`
	Status              string  `json:"status" binding:"required,oneof=SUCCESS FAILED"`
	ExternalReferenceID *string `json:"external_reference_id,omitempty" binding:"omitempty,max=100"`
	Message             *string `json:"message,omitempty" binding:"omitempty,max=500"`
}

// TransactionResponse is the response body for transaction results.
type TransactionResponse struct {
	ID                  string  `json:"id"`
	MerchantID          string  `json:"merchant_id"`
	Amount              string  `json:"amount"`
	Currency            string  `json:"currency"`
	Status              string  `json:"status"`
	ExternalReferenceID *string `json:"external_reference_id,omitempty"`
	IdempotencyKey      *string `json:"idempotency_key,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

// AuditLogResponse is one entry in a transaction's status history.
type AuditLogResponse struct {
	ID             string `json:"id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	Message        string `json:"message"`
	CreatedAt      string `json:"created_at"`
}

// TransactionDetailResponse is a transaction with its audit trail.
type TransactionDetailResponse struct {
	TransactionResponse
	AuditTrail []AuditLogResponse `json:"audit_trail"`
}

// FromTransaction converts a domain transaction to its DTO.
func FromTransaction(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                  t.ID.String(),
		MerchantID:          t.MerchantID.String(),
		Amount:              t.Amount.String(),
		Currency:            t.Currency,
		Status:              string(t.Status),
		ExternalReferenceID: t.ExternalReferenceID,
		IdempotencyKey:      t.IdempotencyKey,
		CreatedAt:           t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           t.UpdatedAt.Format(time.RFC3339),
	}
}

// FromAuditLog converts a domain audit entry to its DTO.
func FromAuditLog(l domain.TransactionAuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:             l.ID.String(),
		PreviousStatus: string(l.PreviousStatus),
		NewStatus:      string(l.NewStatus),
		Message:        l.Message,
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
	}
}

// FromMerchant converts a domain merchant to its DTO.
func FromMerchant(m *domain.Merchant) MerchantResponse {
	return MerchantResponse{
		ID:           m.ID.String(),
		BusinessName: m.BusinessName,
		Email:        m.Email,
		Status:       string(m.Status),
		CreatedAt:    m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    m.UpdatedAt.Format(time.RFC3339),
	}
}

// FromUser converts a domain user to its DTO. The password hash never
// leaves the service.
func FromUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
