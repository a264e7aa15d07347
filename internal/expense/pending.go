package expense

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oatsaysai/spending-in-chat/internal/models"
)

// PendingStore keeps at most one amount per user while a category prompt is open.
// Each user has a private slot with its own lock; the store-wide mutex only guards
// slot lookup, so work for different users never waits on each other. A slot is
// dropped once it is empty and no caller holds or waits for it.
type PendingStore struct {
	mu    sync.Mutex
	slots map[int64]*slot
	ttl   time.Duration
	now   func() time.Time
}

type slot struct {
	mu      sync.Mutex
	pending *models.Pending
	refs    int // guarded by PendingStore.mu
}

// PendingSlot is the locked view of one user's pending amount, valid only inside WithUser.
type PendingSlot struct {
	s     *slot
	store *PendingStore
}

// NewPendingStore creates a store. A zero ttl keeps pending amounts until resolved.
func NewPendingStore(ttl time.Duration) *PendingStore {
	return &PendingStore{
		slots: make(map[int64]*slot),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (p *PendingStore) acquire(userID int64) *slot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.slots[userID]
	if !ok {
		s = &slot{}
		p.slots[userID] = s
	}
	s.refs++
	return s
}

func (p *PendingStore) release(userID int64, s *slot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s.refs--
	// refs == 0 means nobody else can touch s.pending
	if s.refs == 0 && s.pending == nil {
		delete(p.slots, userID)
	}
}

// WithUser runs fn while holding userID's critical section.
func (p *PendingStore) WithUser(userID int64, fn func(ps PendingSlot) error) error {
	s := p.acquire(userID)
	defer p.release(userID, s)

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(PendingSlot{s: s, store: p})
}

func (p *PendingStore) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

// SetPending stores amount for userID, replacing any earlier one.
func (p *PendingStore) SetPending(userID int64, amount decimal.Decimal) {
	_ = p.WithUser(userID, func(ps PendingSlot) error {
		ps.Set(amount)
		return nil
	})
}

// ResolvePending returns and clears userID's pending amount.
func (p *PendingStore) ResolvePending(userID int64) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := p.WithUser(userID, func(ps PendingSlot) error {
		var err error
		amount, err = ps.Resolve()
		return err
	})
	return amount, err
}

// Set overwrites the pending amount; last write wins.
func (ps PendingSlot) Set(amount decimal.Decimal) {
	ps.s.pending = &models.Pending{Amount: amount, SetAt: ps.store.now()}
}

// Resolve returns and clears the pending amount, or ErrNoPendingState if there is
// none or it has outlived the store's ttl.
func (ps PendingSlot) Resolve() (decimal.Decimal, error) {
	pending, err := ps.Take()
	if err != nil {
		return decimal.Zero, err
	}
	return pending.Amount, nil
}

// Take is Resolve keeping the time the amount was set, for a later Restore.
func (ps PendingSlot) Take() (models.Pending, error) {
	pending := ps.s.pending
	ps.s.pending = nil
	if pending == nil {
		return models.Pending{}, ErrNoPendingState
	}
	if ttl := ps.store.ttl; ttl > 0 && ps.store.now().Sub(pending.SetAt) > ttl {
		return models.Pending{}, ErrNoPendingState
	}
	return *pending, nil
}

// Restore puts back a taken amount with its original timestamp, so the ttl keeps
// counting from the first Set.
func (ps PendingSlot) Restore(pending models.Pending) {
	ps.s.pending = &pending
}

// Clear drops the pending amount and reports whether there was one.
func (ps PendingSlot) Clear() bool {
	had := ps.s.pending != nil
	ps.s.pending = nil
	return had
}
