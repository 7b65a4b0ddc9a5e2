package postgres

import (
	"context"
	"errors"
	"fmt"

	"merchant-payment-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

// Create inserts a new merchant into the database.
func (r *MerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	query := `INSERT INTO merchants (id, business_name, email, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.BusinessName, m.Email, m.Status, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

// GetByID fetches a merchant by its UUID.
func (r *MerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	query := `SELECT id, business_name, email, status, created_at, updated_at
		FROM merchants WHERE id = $1`

	return scanMerchant(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches a merchant by email.
func (r *MerchantRepo) GetByEmail(ctx context.Context, email string) (*domain.Merchant, error) {
	query := `SELECT id, business_name, email, status, created_at, updated_at
		FROM merchants WHERE email = $1`

	return scanMerchant(r.pool.QueryRow(ctx, query, email))
}

// GetAll fetches all merchants ordered by creation time.
func (r *MerchantRepo) GetAll(ctx context.Context) ([]domain.Merchant, error) {
	query := `SELECT id, business_name, email, status, created_at, updated_at
		FROM merchants ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	var merchants []domain.Merchant
	for rows.Next() {
		m := domain.Merchant{}
		err := rows.Scan(&m.ID, &m.BusinessName, &m.Email, &m.Status, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan merchant row: %w", err)
		}
		merchants = append(merchants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merchant rows: %w", err)
	}
	return merchants, nil
}

// Update updates a merchant record.
func (r *MerchantRepo) Update(ctx context.Context, m *domain.Merchant) error {
	query := `UPDATE merchants
		SET business_name = $1, email = $2, status = $3, updated_at = $4
		WHERE id = $5`

	_, err := r.pool.Exec(ctx, query,
		m.BusinessName, m.Email, m.Status, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update merchant: %w", err)
	}
	return nil
}

// Delete removes a merchant. Returns false if no row matched.
func (r *MerchantRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM merchants WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete merchant: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Exists reports whether a merchant with the given ID exists.
func (r *MerchantRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM merchants WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check merchant exists: %w", err)
	}
	return exists, nil
}

// scanMerchant is a helper to scan a single row into a Merchant.
func scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	m := &domain.Merchant{}
	err := row.Scan(&m.ID, &m.BusinessName, &m.Email, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan merchant: %w", err)
	}
	return m, nil
}
