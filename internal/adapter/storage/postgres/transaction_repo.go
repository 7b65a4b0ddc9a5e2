package postgres

import (
	"context"
	"errors"
	"fmt"

	"merchant-payment-service/internal/core/domain"
	"merchant-payment-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction. The partial unique index on
// idempotency_key is the authoritative idempotency guard; a violation
// maps to ports.ErrDuplicateIdempotencyKey.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, merchant_id, amount, currency, status,
		external_reference_id, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.MerchantID, t.Amount, t.Currency, t.Status,
		t.ExternalReferenceID, t.IdempotencyKey, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("%w: %s", ports.ErrDuplicateIdempotencyKey, pgErr.ConstraintName)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, merchant_id, amount, currency, status,
		external_reference_id, idempotency_key, created_at, updated_at
		FROM transactions WHERE id = $1`

	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey fetches a transaction by its idempotency key.
func (r *TransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `SELECT id, merchant_id, amount, currency, status,
		external_reference_id, idempotency_key, created_at, updated_at
		FROM transactions WHERE idempotency_key = $1`

	return scanTransaction(r.pool.QueryRow(ctx, query, key))
}

// GetByMerchantID fetches all transactions for a merchant, newest first.
func (r *TransactionRepo) GetByMerchantID(ctx context.Context, merchantID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT id, merchant_id, amount, currency, status,
		external_reference_id, idempotency_key, created_at, updated_at
		FROM transactions WHERE merchant_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.MerchantID, &t.Amount, &t.Currency, &t.Status,
			&t.ExternalReferenceID, &t.IdempotencyKey, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// FinalizeWithAudit applies the status transition and appends the audit
// entry in one database transaction. The update is guarded on the row
// still being PENDING; if another callback already won, nothing is
// written and ports.ErrTransactionFinalized is returned.
func (r *TransactionRepo) FinalizeWithAudit(ctx context.Context, t *domain.Transaction, audit *domain.TransactionAuditLog) (*domain.Transaction, error) {
	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	updateQuery := `UPDATE transactions
		SET status = $1, external_reference_id = $2, updated_at = $3
		WHERE id = $4 AND status = $5`

	tag, err := dbTx.Exec(ctx, updateQuery,
		t.Status, t.ExternalReferenceID, t.UpdatedAt,
		t.ID, domain.TransactionStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ports.ErrTransactionFinalized
	}

	auditQuery := `INSERT INTO transaction_audit_logs (id, transaction_id, previous_status, new_status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = dbTx.Exec(ctx, auditQuery,
		audit.ID, audit.TransactionID, audit.PreviousStatus,
		audit.NewStatus, audit.Message, audit.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert audit log: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return t, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.MerchantID, &t.Amount, &t.Currency, &t.Status,
		&t.ExternalReferenceID, &t.IdempotencyKey, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
