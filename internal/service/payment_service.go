package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"merchant-payment-service/internal/core/domain"
	"merchant-payment-service/internal/core/ports"
	"merchant-payment-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const idempotencyTTL = 24 * time.Hour

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	txRepo       ports.TransactionRepository
	auditRepo    ports.AuditLogRepository
	merchantRepo ports.MerchantRepository
	velocity     ports.VelocityChecker
	idempCache   ports.IdempotencyCache
	maxAmount    decimal.Decimal
	log          zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	txRepo ports.TransactionRepository,
	auditRepo ports.AuditLogRepository,
	merchantRepo ports.MerchantRepository,
	velocity ports.VelocityChecker,
	idempCache ports.IdempotencyCache,
	maxAmount decimal.Decimal,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		txRepo:       txRepo,
		auditRepo:    auditRepo,
		merchantRepo: merchantRepo,
		velocity:     velocity,
		idempCache:   idempCache,
		maxAmount:    maxAmount,
		log:          log,
	}
}

// CreatePayment runs the creation pipeline: merchant gate, idempotent
// replay, velocity check, durable insert, velocity record. The velocity
// window only counts transactions that actually got persisted, so a
// denied or replayed request never consumes quota.
func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, req ports.CreatePaymentRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Amount.GreaterThan(s.maxAmount) {
		return nil, apperror.ErrAmountLimitExceeded(s.maxAmount.String())
	}

	merchant, err := s.merchantRepo.GetByID(ctx, req.MerchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("Merchant")
	}
	if !merchant.IsActive() {
		return nil, apperror.ErrMerchantNotActive(string(merchant.Status))
	}

	if req.IdempotencyKey != nil {
		if existing, err := s.lookupByIdempotencyKey(ctx, *req.IdempotencyKey); err != nil {
			return nil, err
		} else if existing != nil {
			s.log.Info().
				Str("tx_id", existing.ID.String()).
				Str("idempotency_key", *req.IdempotencyKey).
				Msg("idempotent replay, returning existing transaction")
			return existing, nil
		}
	}

	if !s.velocity.IsAllowed(req.MerchantID) {
		s.log.Warn().
			Str("merchant_id", req.MerchantID.String()).
			Msg("transaction velocity limit hit")
		return nil, apperror.ErrVelocityLimitExceeded()
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:             uuid.New(),
		MerchantID:     req.MerchantID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         domain.TransactionStatusPending,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.txRepo.Create(ctx, txn); err != nil {
		if errors.Is(err, ports.ErrDuplicateIdempotencyKey) && req.IdempotencyKey != nil {
			// Lost a race on the same key; the winner's row is the
			// canonical response for this request.
			winner, lookupErr := s.txRepo.GetByIdempotencyKey(ctx, *req.IdempotencyKey)
			if lookupErr != nil {
				return nil, apperror.ErrDatabaseError(fmt.Errorf("re-fetch idempotent winner: %w", lookupErr))
			}
			if winner == nil {
				return nil, apperror.ErrIdempotencyConflict(err)
			}
			return winner, nil
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create transaction: %w", err))
	}

	s.velocity.RecordTransaction(req.MerchantID)
	if req.IdempotencyKey != nil {
		s.cacheTransaction(ctx, *req.IdempotencyKey, txn)
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("merchant_id", req.MerchantID.String()).
		Str("amount", req.Amount.String()).
		Str("currency", req.Currency).
		Msg("payment transaction created")

	return txn, nil
}

// ProcessCallback finalizes a pending transaction from a gateway
// callback. Exactly one callback wins; a transaction that already left
// PENDING rejects any further callback.
func (s *PaymentServiceImpl) ProcessCallback(ctx context.Context, req ports.CallbackRequest) (*domain.Transaction, error) {
	status, err := domain.ParseTransactionStatus(req.Status)
	if err != nil || !status.IsCallbackTarget() {
		return nil, apperror.ErrInvalidStatus(req.Status)
	}

	txn, err := s.txRepo.GetByID(ctx, req.TransactionID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("Transaction")
	}
	if !txn.IsPending() {
		return nil, apperror.ErrTransactionNotPending(string(txn.Status))
	}

	previous := txn.Status
	txn.Status = status
	txn.UpdatedAt = time.Now().UTC()
	if req.ExternalReferenceID != nil {
		txn.ExternalReferenceID = req.ExternalReferenceID
	}

	message := ""
	if req.Message != nil {
		message = *req.Message
	}
	audit := domain.NewStatusTransitionAudit(txn.ID, previous, status, message)

	finalized, err := s.txRepo.FinalizeWithAudit(ctx, txn, audit)
	if err != nil {
		if errors.Is(err, ports.ErrTransactionFinalized) {
			// A concurrent callback won; report the state it left behind.
			current, lookupErr := s.txRepo.GetByID(ctx, req.TransactionID)
			if lookupErr == nil && current != nil {
				return nil, apperror.ErrTransactionNotPending(string(current.Status))
			}
			return nil, apperror.ErrTransactionNotPending(string(previous))
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("finalize transaction: %w", err))
	}

	if finalized.IdempotencyKey != nil {
		// Refresh the replay cache: a later create with the same key must
		// see the finalized state, not the PENDING snapshot cached at
		// creation.
		s.cacheTransaction(ctx, *finalized.IdempotencyKey, finalized)
	}

	s.log.Info().
		Str("tx_id", finalized.ID.String()).
		Str("previous_status", string(previous)).
		Str("new_status", string(finalized.Status)).
		Msg("transaction finalized via callback")

	return finalized, nil
}

// GetByID returns a transaction with its full status transition history.
func (s *PaymentServiceImpl) GetByID(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, []domain.TransactionAuditLog, error) {
	txn, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, nil, apperror.ErrNotFound("Transaction")
	}

	audits, err := s.auditRepo.ListByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("list audit logs: %w", err))
	}
	return txn, audits, nil
}

// GetByMerchantID returns all transactions belonging to a merchant.
func (s *PaymentServiceImpl) GetByMerchantID(ctx context.Context, merchantID uuid.UUID) ([]domain.Transaction, error) {
	exists, err := s.merchantRepo.Exists(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check merchant: %w", err))
	}
	if !exists {
		return nil, apperror.ErrNotFound("Merchant")
	}
	txns, err := s.txRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// lookupByIdempotencyKey checks the Redis fast path, then the
// authoritative store. Cache misses and cache errors both fall through
// to the repository.
func (s *PaymentServiceImpl) lookupByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		txn := &domain.Transaction{}
		if err := json.Unmarshal(cached, txn); err == nil {
			return txn, nil
		}
		s.log.Warn().Str("key", key).Msg("corrupt cached transaction, falling through to DB")
	}

	txn, err := s.txRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("idempotency lookup: %w", err))
	}
	return txn, nil
}

// cacheTransaction stores the created transaction for idempotent
// replays. Best-effort only.
func (s *PaymentServiceImpl) cacheTransaction(ctx context.Context, key string, txn *domain.Transaction) {
	payload, err := json.Marshal(txn)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to marshal transaction for cache")
		return
	}
	if err := s.idempCache.Set(ctx, key, payload, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache idempotency in redis")
	}
}
