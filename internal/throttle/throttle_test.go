package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowBurstThenBlock(t *testing.T) {
	l := New(1, 3)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("chat"), "event %d", i)
	}
	assert.False(t, l.Allow("chat"))

	// other chats have their own bucket
	assert.True(t, l.Allow("other"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("chat"))
}

func TestDisabledLimiterAlwaysAllows(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("chat"))
	}
}

func TestCleanupDropsIdleChats(t *testing.T) {
	l := New(1, 1)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(2 * time.Minute)
	l.Allow("recent")
	now = now.Add(2 * time.Minute)

	l.Cleanup()
	assert.Equal(t, 1, l.size())
}

func TestRunStopsWithContext(t *testing.T) {
	l := New(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
