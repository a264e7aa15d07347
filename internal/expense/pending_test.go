package expense

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePendingWithoutSet(t *testing.T) {
	p := NewPendingStore(0)

	_, err := p.ResolvePending(1)
	assert.ErrorIs(t, err, ErrNoPendingState)
}

func TestResolvePendingClears(t *testing.T) {
	p := NewPendingStore(0)
	p.SetPending(1, decimal.NewFromInt(12))

	amount, err := p.ResolvePending(1)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(12)))

	_, err = p.ResolvePending(1)
	assert.ErrorIs(t, err, ErrNoPendingState)
}

func TestSetPendingLastWriteWins(t *testing.T) {
	p := NewPendingStore(0)
	p.SetPending(1, decimal.NewFromInt(5))
	p.SetPending(1, decimal.NewFromInt(9))

	amount, err := p.ResolvePending(1)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(9)))
}

func TestPendingIsPerUser(t *testing.T) {
	p := NewPendingStore(0)
	p.SetPending(1, decimal.NewFromInt(5))

	_, err := p.ResolvePending(2)
	assert.ErrorIs(t, err, ErrNoPendingState)

	amount, err := p.ResolvePending(1)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(5)))
}

func TestPendingExpires(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	p := NewPendingStore(time.Hour)
	p.now = func() time.Time { return now }

	p.SetPending(1, decimal.NewFromInt(5))
	now = now.Add(61 * time.Minute)

	_, err := p.ResolvePending(1)
	assert.ErrorIs(t, err, ErrNoPendingState)
}

func TestClear(t *testing.T) {
	p := NewPendingStore(0)
	p.SetPending(1, decimal.NewFromInt(5))

	var first, second bool
	_ = p.WithUser(1, func(ps PendingSlot) error {
		first = ps.Clear()
		second = ps.Clear()
		return nil
	})
	assert.True(t, first)
	assert.False(t, second)
}

func TestWithUserSerializesSameUser(t *testing.T) {
	p := NewPendingStore(0)
	const workers = 50

	var wg sync.WaitGroup
	resolved := 0
	var mu sync.Mutex
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = p.WithUser(7, func(ps PendingSlot) error {
				// set and resolve inside one critical section never interleave with another goroutine
				ps.Set(decimal.NewFromInt(int64(i + 1)))
				amount, err := ps.Resolve()
				if err == nil && amount.Equal(decimal.NewFromInt(int64(i+1))) {
					mu.Lock()
					resolved++
					mu.Unlock()
				}
				return nil
			})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, workers, resolved)
}

func TestWithUserDoesNotBlockOtherUsers(t *testing.T) {
	p := NewPendingStore(0)
	entered := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = p.WithUser(1, func(ps PendingSlot) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	done := make(chan struct{})
	go func() {
		p.SetPending(2, decimal.NewFromInt(3))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("user 2 was blocked by user 1's critical section")
	}
	close(release)
}

func TestPendingSlotsAreReleased(t *testing.T) {
	p := NewPendingStore(0)

	p.SetPending(1, decimal.NewFromInt(5))
	p.SetPending(2, decimal.NewFromInt(6))
	assert.Equal(t, 2, p.size())

	_, err := p.ResolvePending(1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.size())

	// a lookup with nothing pending leaves no slot behind
	_, err = p.ResolvePending(3)
	assert.ErrorIs(t, err, ErrNoPendingState)
	assert.Equal(t, 1, p.size())

	_ = p.WithUser(2, func(ps PendingSlot) error {
		ps.Clear()
		return nil
	})
	assert.Equal(t, 0, p.size())
}

func TestRestoreKeepsOriginalTimestamp(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	p := NewPendingStore(time.Hour)
	p.now = func() time.Time { return now }
	p.SetPending(1, decimal.NewFromInt(5))

	now = now.Add(30 * time.Minute)
	_ = p.WithUser(1, func(ps PendingSlot) error {
		taken, err := ps.Take()
		require.NoError(t, err)
		assert.Equal(t, now.Add(-30*time.Minute), taken.SetAt)
		ps.Restore(taken)
		return nil
	})

	now = now.Add(31 * time.Minute)
	_, err := p.ResolvePending(1)
	assert.ErrorIs(t, err, ErrNoPendingState)
}
