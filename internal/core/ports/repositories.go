package ports

import (
	"context"
	"errors"

	"merchant-payment-service/internal/core/domain"

	"github.com/google/uuid"
)

// ErrDuplicateIdempotencyKey is returned by TransactionRepository.Create
// when the storage-level uniqueness constraint on the idempotency key
// rejects the insert. The engine resolves the race by re-fetching the
// winning transaction.
var ErrDuplicateIdempotencyKey = errors.New("transaction with this idempotency key already exists")

// ErrTransactionFinalized is returned by FinalizeWithAudit when the
// guarded update matches no row because the transaction already left
// the PENDING state. Nothing is written in that case.
var ErrTransactionFinalized = errors.New("transaction is no longer pending")

// MerchantRepository defines persistence operations for merchants.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	GetByEmail(ctx context.Context, email string) (*domain.Merchant, error)
	GetAll(ctx context.Context) ([]domain.Merchant, error)
	Update(ctx context.Context, merchant *domain.Merchant) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// TransactionRepository defines persistence operations for payment
// transactions and their audit trail.
type TransactionRepository interface {
	// Create inserts a new transaction. Returns ErrDuplicateIdempotencyKey
	// (possibly wrapped) when the idempotency key is already taken.
	Create(ctx context.Context, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	GetByMerchantID(ctx context.Context, merchantID uuid.UUID) ([]domain.Transaction, error)
	// FinalizeWithAudit persists the updated transaction and appends the
	// audit entry as one atomic unit: either both are visible afterwards
	// or neither is. The update is guarded on the transaction still being
	// PENDING; a guard miss surfaces as an error with no mutation.
	FinalizeWithAudit(ctx context.Context, transaction *domain.Transaction, audit *domain.TransactionAuditLog) (*domain.Transaction, error)
}

// AuditLogRepository reads the append-only status transition history.
type AuditLogRepository interface {
	ListByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]domain.TransactionAuditLog, error)
}

// UserRepository defines persistence operations for API users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
}
