package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestChecker(maxEvents int, window time.Duration) (*VelocityFraudChecker, *fakeClock) {
	clock := newFakeClock()
	checker := NewVelocityFraudChecker(maxEvents, window)
	checker.now = clock.Now
	return checker, clock
}

func TestVelocityFraudChecker_AllowsUnderLimit(t *testing.T) {
	checker, _ := newTestChecker(10, 60*time.Second)
	merchantID := uuid.New()

	for i := 0; i < 9; i++ {
		checker.RecordTransaction(merchantID)
	}

	assert.True(t, checker.IsAllowed(merchantID))
}

func TestVelocityFraudChecker_DeniesAtLimit(t *testing.T) {
	checker, _ := newTestChecker(10, 60*time.Second)
	merchantID := uuid.New()

	for i := 0; i < 10; i++ {
		checker.RecordTransaction(merchantID)
	}

	assert.False(t, checker.IsAllowed(merchantID))
}

func TestVelocityFraudChecker_AllowsUnknownMerchant(t *testing.T) {
	checker, _ := newTestChecker(1, 60*time.Second)

	assert.True(t, checker.IsAllowed(uuid.New()))
}

func TestVelocityFraudChecker_WindowExpiry(t *testing.T) {
	checker, clock := newTestChecker(3, 60*time.Second)
	merchantID := uuid.New()

	for i := 0; i < 3; i++ {
		checker.RecordTransaction(merchantID)
	}
	assert.False(t, checker.IsAllowed(merchantID), "window full at t=0")

	clock.Advance(61 * time.Second)
	assert.True(t, checker.IsAllowed(merchantID), "all entries expired at t=61s")
}

func TestVelocityFraudChecker_EntryAtExactBoundaryStillCounts(t *testing.T) {
	checker, clock := newTestChecker(1, 60*time.Second)
	merchantID := uuid.New()

	checker.RecordTransaction(merchantID)

	clock.Advance(60 * time.Second)
	assert.False(t, checker.IsAllowed(merchantID), "entry aged exactly the window is still inside it")

	clock.Advance(time.Nanosecond)
	assert.True(t, checker.IsAllowed(merchantID))
}

func TestVelocityFraudChecker_PartialExpiry(t *testing.T) {
	checker, clock := newTestChecker(3, 60*time.Second)
	merchantID := uuid.New()

	checker.RecordTransaction(merchantID)
	checker.RecordTransaction(merchantID)
	clock.Advance(30 * time.Second)
	checker.RecordTransaction(merchantID)
	assert.False(t, checker.IsAllowed(merchantID))

	// The first two entries expire; the third is still inside.
	clock.Advance(31 * time.Second)
	assert.True(t, checker.IsAllowed(merchantID))

	checker.RecordTransaction(merchantID)
	checker.RecordTransaction(merchantID)
	assert.False(t, checker.IsAllowed(merchantID))
}

func TestVelocityFraudChecker_MerchantsAreIndependent(t *testing.T) {
	checker, _ := newTestChecker(2, 60*time.Second)
	merchantA := uuid.New()
	merchantB := uuid.New()

	checker.RecordTransaction(merchantA)
	checker.RecordTransaction(merchantA)

	assert.False(t, checker.IsAllowed(merchantA))
	assert.True(t, checker.IsAllowed(merchantB))
}

func TestVelocityFraudChecker_PurgeKeepsMemoryBounded(t *testing.T) {
	checker, clock := newTestChecker(5, 60*time.Second)
	merchantID := uuid.New()

	for i := 0; i < 100; i++ {
		checker.RecordTransaction(merchantID)
		clock.Advance(time.Second)
	}

	w := checker.windowFor(merchantID)
	w.mu.Lock()
	defer w.mu.Unlock()
	assert.LessOrEqual(t, len(w.events), 61, "expired entries must be purged on record")
}

func TestVelocityFraudChecker_ConcurrentAccess(t *testing.T) {
	checker, _ := newTestChecker(1000, 60*time.Second)
	merchants := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			merchantID := merchants[n%len(merchants)]
			for j := 0; j < 50; j++ {
				checker.IsAllowed(merchantID)
				checker.RecordTransaction(merchantID)
			}
		}(i)
	}
	wg.Wait()

	// 2 goroutines per merchant, 50 records each; all within the window.
	for _, merchantID := range merchants {
		w := checker.windowFor(merchantID)
		w.mu.Lock()
		assert.Len(t, w.events, 100)
		w.mu.Unlock()
	}
}
