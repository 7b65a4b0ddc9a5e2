package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"merchant-payment-service/internal/core/domain"
	"merchant-payment-service/internal/core/ports"
	"merchant-payment-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type merchantService struct {
	merchantRepo ports.MerchantRepository
	log          zerolog.Logger
}

// NewMerchantService creates a new merchant management service.
func NewMerchantService(merchantRepo ports.MerchantRepository, log zerolog.Logger) ports.MerchantService {
	return &merchantService{
		merchantRepo: merchantRepo,
		log:          log,
	}
}

func (s *merchantService) GetByID(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("Merchant")
	}
	return merchant, nil
}

func (s *merchantService) GetAll(ctx context.Context) ([]domain.Merchant, error) {
	merchants, err := s.merchantRepo.GetAll(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list merchants: %w", err))
	}
	return merchants, nil
}

// Create registers a merchant in the PENDING state. Activation is a
// separate status transition.
func (s *merchantService) Create(ctx context.Context, req ports.CreateMerchantRequest) (*domain.Merchant, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.merchantRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check merchant email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailInUse(email)
	}

	now := time.Now().UTC()
	merchant := &domain.Merchant{
		ID:           uuid.New(),
		BusinessName: req.BusinessName,
		Email:        email,
		Status:       domain.MerchantStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create merchant: %w", err))
	}

	s.log.Info().
		Str("merchant_id", merchant.ID.String()).
		Str("business_name", merchant.BusinessName).
		Msg("merchant registered")

	return merchant, nil
}

func (s *merchantService) Update(ctx context.Context, merchantID uuid.UUID, req ports.UpdateMerchantRequest) (*domain.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("Merchant")
	}

	if req.Email != "" {
		email := normalizeEmail(req.Email)
		if email != merchant.Email {
			existing, err := s.merchantRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, apperror.ErrDatabaseError(fmt.Errorf("check merchant email: %w", err))
			}
			if existing != nil {
				return nil, apperror.ErrEmailInUse(email)
			}
			merchant.Email = email
		}
	}
	if req.BusinessName != "" {
		merchant.BusinessName = req.BusinessName
	}
	merchant.UpdatedAt = time.Now().UTC()

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update merchant: %w", err))
	}
	return merchant, nil
}

// UpdateStatus moves a merchant to any status in the closed set.
// Operator-driven; there is no transition graph between merchant states.
func (s *merchantService) UpdateStatus(ctx context.Context, merchantID uuid.UUID, statusLabel string) (*domain.Merchant, error) {
	status, err := domain.ParseMerchantStatus(statusLabel)
	if err != nil {
		return nil, apperror.ErrInvalidStatus(statusLabel)
	}

	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("Merchant")
	}

	previous := merchant.Status
	merchant.Status = status
	merchant.UpdatedAt = time.Now().UTC()

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update merchant status: %w", err))
	}

	s.log.Info().
		Str("merchant_id", merchant.ID.String()).
		Str("previous_status", string(previous)).
		Str("new_status", string(status)).
		Msg("merchant status changed")

	return merchant, nil
}

func (s *merchantService) Delete(ctx context.Context, merchantID uuid.UUID) error {
	deleted, err := s.merchantRepo.Delete(ctx, merchantID)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("delete merchant: %w", err))
	}
	if !deleted {
		return apperror.ErrNotFound("Merchant")
	}
	s.log.Info().Str("merchant_id", merchantID.String()).Msg("merchant deleted")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
