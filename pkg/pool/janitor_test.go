package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCleanupPool(t *testing.T, capacity int, interval, maxIdle time.Duration) *Pool[*testObject] {
	t.Helper()
	cfg := DefaultConfig[*testObject]()
	cfg.AutoCleanup = true
	cfg.CleanupInterval = interval
	cfg.MaxIdleTime = maxIdle
	p, err := New[*testObject](capacity, 0, func() *testObject { return &testObject{} }, cfg)
	require.NoError(t, err)
	return p
}

func TestRunCleanup_ForcedReapsExpiredIdle(t *testing.T) {
	p := newCleanupPool(t, 5, time.Hour, 0)

	handles := make([]*Handle[*testObject], 0, 3)
	for i := 0; i < 3; i++ {
		h, err := p.Acquire(PriorityNormal)
		require.NoError(t, err)
		handles = append(handles, h)
	}
	ReleaseAll(handles)
	assert.Equal(t, 3, p.Size())

	// MaxIdleTime of zero expires everything instantly.
	removed := p.RunCleanup(true)
	assert.Equal(t, 3, removed)
	assert.Equal(t, 0, p.Size())
	assert.Equal(t, 5, p.Available())
	assert.Equal(t, uint64(3), p.Stats().Cleanups)
}

func TestRunCleanup_IntervalGatesUnforcedSweeps(t *testing.T) {
	p := newCleanupPool(t, 5, time.Hour, 0)

	h, _ := p.Acquire(PriorityNormal)
	h.Release()

	// The hour since the last sweep has not elapsed.
	assert.Equal(t, 0, p.RunCleanup(false))
	assert.Equal(t, 1, p.Size())

	assert.Equal(t, 1, p.RunCleanup(true))
	assert.Equal(t, 0, p.Size())
}

func TestRunCleanup_KeepsFreshIdle(t *testing.T) {
	p := newCleanupPool(t, 5, time.Hour, time.Hour)

	h, _ := p.Acquire(PriorityNormal)
	h.Release()

	assert.Equal(t, 0, p.RunCleanup(true))
	assert.Equal(t, 1, p.Size())
}

func TestRunCleanup_NoopWhenDisabled(t *testing.T) {
	p := newTestPool(t, 5, 3)
	assert.Equal(t, 0, p.RunCleanup(true))
	assert.Equal(t, 3, p.Size())
}

func TestRunCleanup_ReapedSlotsAreReusable(t *testing.T) {
	p := newCleanupPool(t, 2, time.Hour, 0)

	h, _ := p.Acquire(PriorityNormal)
	h.Release()
	require.Equal(t, 1, p.RunCleanup(true))

	// The freed slot backs a brand new object.
	h2, err := p.Acquire(PriorityNormal)
	require.NoError(t, err)
	require.NotNil(t, h2)
	assert.Equal(t, 1, p.Size())
	h2.Release()
}

func TestRunJanitor_SweepsInBackground(t *testing.T) {
	p := newCleanupPool(t, 5, 10*time.Millisecond, 0)

	h, _ := p.Acquire(PriorityNormal)
	h.Release()
	require.Equal(t, 1, p.Size())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.RunJanitor(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && p.Size() > 0 {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 0, p.Size())
	assert.Equal(t, 5, p.Available())
}

func TestRunJanitor_PicksUpReconfigure(t *testing.T) {
	// Cleanup is off at startup; the running janitor must notice the switch.
	p := newTestPool(t, 4, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.RunJanitor(ctx)

	cfg := DefaultConfig[*testObject]()
	cfg.AutoCleanup = true
	cfg.CleanupInterval = 10 * time.Millisecond
	cfg.MaxIdleTime = 0
	require.NoError(t, p.Reconfigure(cfg))

	// The first janitor tick still runs on the old one-second fallback
	// cadence before the new interval applies.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && p.Size() > 0 {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 0, p.Size())
	assert.Equal(t, 4, p.Available())
}
