package ports

import (
	"context"
	"time"

	"merchant-payment-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks
//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// VelocityChecker admits or denies transaction attempts per merchant
// based on a trailing sliding window of recent activity.
type VelocityChecker interface {
	// IsAllowed reports whether the merchant may create another
	// transaction right now. Purges expired window entries as a side
	// effect.
	IsAllowed(merchantID uuid.UUID) bool
	// RecordTransaction adds the current instant to the merchant's
	// window. Call only after the transaction has been durably accepted.
	RecordTransaction(merchantID uuid.UUID)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, username, role string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

// IdempotencyCache is the Redis fast-path lookup for idempotent
// creation. Best-effort only; the authoritative check is the storage
// uniqueness constraint.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached transaction JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// PaymentService defines the payment transaction lifecycle engine.
type PaymentService interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*domain.Transaction, error)
	ProcessCallback(ctx context.Context, req CallbackRequest) (*domain.Transaction, error)
	GetByID(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, []domain.TransactionAuditLog, error)
	GetByMerchantID(ctx context.Context, merchantID uuid.UUID) ([]domain.Transaction, error)
}

// CreatePaymentRequest holds validated input for payment creation.
type CreatePaymentRequest struct {
	MerchantID     uuid.UUID
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey *string
}

// CallbackRequest holds validated input for callback processing.
type CallbackRequest struct {
	TransactionID       uuid.UUID
	Status              string // Must parse to SUCCESS or FAILED
	ExternalReferenceID *string
	Message             *string
}

// MerchantService defines merchant onboarding and management.
type MerchantService interface {
	GetByID(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error)
	GetAll(ctx context.Context) ([]domain.Merchant, error)
	Create(ctx context.Context, req CreateMerchantRequest) (*domain.Merchant, error)
	Update(ctx context.Context, merchantID uuid.UUID, req UpdateMerchantRequest) (*domain.Merchant, error)
	UpdateStatus(ctx context.Context, merchantID uuid.UUID, statusLabel string) (*domain.Merchant, error)
	Delete(ctx context.Context, merchantID uuid.UUID) error
}

// CreateMerchantRequest holds input for merchant creation.
type CreateMerchantRequest struct {
	BusinessName string
	Email        string
}

// UpdateMerchantRequest holds input for merchant updates. Empty fields
// are left unchanged.
type UpdateMerchantRequest struct {
	BusinessName string
	Email        string
}

// AuthService defines user authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// RegisterRequest holds input for user registration.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// LoginResult holds the issued token and its owner.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}
