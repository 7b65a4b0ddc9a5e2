package integration

import (
	"context"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	httpHandler "merchant-payment-service/internal/adapter/http/handler"
	redisStorage "merchant-payment-service/internal/adapter/storage/redis"
	"merchant-payment-service/internal/core/domain"
	"merchant-payment-service/internal/core/ports"
	"merchant-payment-service/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// In-memory repository implementations mirroring the PostgreSQL
// adapter's contract: idempotency key uniqueness on insert, and
// atomic finalize-with-audit guarded on the PENDING state.

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[uuid.UUID]domain.Merchant
}

func newInMemoryMerchantRepo() *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{merchants: make(map[uuid.UUID]domain.Merchant)}
}

func (r *inMemoryMerchantRepo) Create(_ context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merchants[m.ID] = *m
	return nil
}

func (r *inMemoryMerchantRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.merchants[id]; ok {
		cp := m
		return &cp, nil
	}
	return nil, nil
}

func (r *inMemoryMerchantRepo) GetByEmail(_ context.Context, email string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if m.Email == email {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMerchantRepo) GetAll(_ context.Context) ([]domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Merchant, 0, len(r.merchants))
	for _, m := range r.merchants {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *inMemoryMerchantRepo) Update(_ context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merchants[m.ID] = *m
	return nil
}

func (r *inMemoryMerchantRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.merchants[id]; !ok {
		return false, nil
	}
	delete(r.merchants, id)
	return true, nil
}

func (r *inMemoryMerchantRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.merchants[id]
	return ok, nil
}

type inMemoryTransactionRepo struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]domain.Transaction
	byKey        map[string]uuid.UUID
	auditLogs    map[uuid.UUID][]domain.TransactionAuditLog
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{
		transactions: make(map[uuid.UUID]domain.Transaction),
		byKey:        make(map[string]uuid.UUID),
		auditLogs:    make(map[uuid.UUID][]domain.TransactionAuditLog),
	}
}

func (r *inMemoryTransactionRepo) Create(_ context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.IdempotencyKey != nil {
		if _, taken := r.byKey[*t.IdempotencyKey]; taken {
			return ports.ErrDuplicateIdempotencyKey
		}
		r.byKey[*t.IdempotencyKey] = t.ID
	}
	r.transactions[t.ID] = *t
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.transactions[id]; ok {
		cp := t
		return &cp, nil
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) GetByIdempotencyKey(_ context.Context, key string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byKey[key]; ok {
		t := r.transactions[id]
		return &t, nil
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) GetByMerchantID(_ context.Context, merchantID uuid.UUID) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Transaction
	for _, t := range r.transactions {
		if t.MerchantID == merchantID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *inMemoryTransactionRepo) FinalizeWithAudit(_ context.Context, t *domain.Transaction, audit *domain.TransactionAuditLog) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.transactions[t.ID]
	if !ok || stored.Status != domain.TransactionStatusPending {
		return nil, ports.ErrTransactionFinalized
	}
	r.transactions[t.ID] = *t
	r.auditLogs[t.ID] = append(r.auditLogs[t.ID], *audit)
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) ListByTransactionID(_ context.Context, transactionID uuid.UUID) ([]domain.TransactionAuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	logs := r.auditLogs[transactionID]
	out := make([]domain.TransactionAuditLog, len(logs))
	copy(out, logs)
	return out, nil
}

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (r *inMemoryUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *inMemoryUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		cp := u
		return &cp, nil
	}
	return nil, nil
}

func (r *inMemoryUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	u, _ := r.GetByUsername(context.Background(), username)
	return u != nil, nil
}

func (r *inMemoryUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

// testApp wires the full HTTP stack against in-memory repositories and
// a miniredis instance.
type testApp struct {
	server       *httptest.Server
	redisServer  *miniredis.Miniredis
	redisClient  *redis.Client
	merchantRepo *inMemoryMerchantRepo
	txRepo       *inMemoryTransactionRepo
	userRepo     *inMemoryUserRepo
	velocity     *service.VelocityFraudChecker
}

type testAppOptions struct {
	velocityMaxEvents int
	velocityWindow    time.Duration
	maxAmount         string
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWithOptions(t, testAppOptions{
		velocityMaxEvents: 10,
		velocityWindow:    time.Minute,
		maxAmount:         "1000000",
	})
}

func newTestAppWithOptions(t *testing.T, opts testAppOptions) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := zerolog.Nop()

	merchantRepo := newInMemoryMerchantRepo()
	txRepo := newInMemoryTransactionRepo()
	userRepo := newInMemoryUserRepo()

	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("integration-test-secret", time.Hour, "merchant-payment-service")
	velocity := service.NewVelocityFraudChecker(opts.velocityMaxEvents, opts.velocityWindow)

	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc, log)
	paymentSvc := service.NewPaymentService(
		txRepo,
		txRepo, // same store serves the audit trail reads
		merchantRepo,
		velocity,
		idempotencyCache,
		decimal.RequireFromString(opts.maxAmount),
		log,
	)
	merchantSvc := service.NewMerchantService(merchantRepo, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		PaymentSvc:     paymentSvc,
		MerchantSvc:    merchantSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		Logger:         log,
	})

	return &testApp{
		server:       httptest.NewServer(router),
		redisServer:  mr,
		redisClient:  rdb,
		merchantRepo: merchantRepo,
		txRepo:       txRepo,
		userRepo:     userRepo,
		velocity:     velocity,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redisClient.Close()
	a.redisServer.Close()
}
