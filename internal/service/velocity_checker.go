package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// VelocityFraudChecker implements ports.VelocityChecker with an
// in-memory sliding window per merchant. Windows hold only timestamps;
// the fraud signal is volumetric. State is process-local and rebuilt
// empty on restart — this is a soft anti-abuse control, not a ledger.
//
// Each merchant's window is synchronized independently, so unrelated
// merchants never contend on the same lock. Windows are created lazily
// and never removed; merchant cardinality is bounded by onboarding.
type VelocityFraudChecker struct {
	maxEvents int
	window    time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	windows map[uuid.UUID]*merchantWindow
}

// merchantWindow is a FIFO of event timestamps. Appends are
// non-decreasing in time, so purging scans from the front and stops at
// the first entry still inside the window.
type merchantWindow struct {
	mu     sync.Mutex
	events []time.Time
}

// NewVelocityFraudChecker creates a checker admitting at most maxEvents
// transactions per merchant within the trailing window duration.
func NewVelocityFraudChecker(maxEvents int, window time.Duration) *VelocityFraudChecker {
	return &VelocityFraudChecker{
		maxEvents: maxEvents,
		window:    window,
		now:       time.Now,
		windows:   make(map[uuid.UUID]*merchantWindow),
	}
}

// IsAllowed reports whether the merchant may create another transaction.
// Expired entries are purged as a side effect, keeping memory bounded
// without a sweeper task.
func (c *VelocityFraudChecker) IsAllowed(merchantID uuid.UUID) bool {
	w := c.windowFor(merchantID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.purge(c.now().Add(-c.window))
	return len(w.events) < c.maxEvents
}

// RecordTransaction appends the current instant to the merchant's
// window. Callers must invoke it only after the transaction has been
// durably persisted.
func (c *VelocityFraudChecker) RecordTransaction(merchantID uuid.UUID) {
	w := c.windowFor(merchantID)

	w.mu.Lock()
	defer w.mu.Unlock()
	now := c.now()
	w.events = append(w.events, now)
	w.purge(now.Add(-c.window))
}

// windowFor returns the merchant's window, creating it on first access.
func (c *VelocityFraudChecker) windowFor(merchantID uuid.UUID) *merchantWindow {
	c.mu.RLock()
	w, ok := c.windows[merchantID]
	c.mu.RUnlock()
	if ok {
		return w
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok = c.windows[merchantID]; !ok {
		w = &merchantWindow{}
		c.windows[merchantID] = w
	}
	return w
}

// purge drops entries strictly older than the cutoff. Caller holds w.mu.
func (w *merchantWindow) purge(cutoff time.Time) {
	i := 0
	for i < len(w.events) && w.events[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return
	}
	if i == len(w.events) {
		w.events = w.events[:0]
		return
	}
	w.events = append(w.events[:0], w.events[i:]...)
}
