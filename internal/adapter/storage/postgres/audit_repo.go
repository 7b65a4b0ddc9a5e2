package postgres

import (
	"context"
	"fmt"

	"merchant-payment-service/internal/core/domain"
	"merchant-payment-service/internal/core/ports"

	"github.com/google/uuid"
)

type auditLogRepo struct {
	pool Pool
}

// NewAuditLogRepo creates a PostgreSQL-backed AuditLogRepository.
// Audit rows are written only inside FinalizeWithAudit; this repository
// is read-only.
func NewAuditLogRepo(pool Pool) ports.AuditLogRepository {
	return &auditLogRepo{pool: pool}
}

func (r *auditLogRepo) ListByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]domain.TransactionAuditLog, error) {
	query := `SELECT id, transaction_id, previous_status, new_status, message, created_at
		FROM transaction_audit_logs WHERE transaction_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.TransactionAuditLog
	for rows.Next() {
		l := domain.TransactionAuditLog{}
		err := rows.Scan(&l.ID, &l.TransactionID, &l.PreviousStatus, &l.NewStatus, &l.Message, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan audit log row: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log rows: %w", err)
	}
	return logs, nil
}
