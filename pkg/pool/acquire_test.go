package pool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// awaitWaiters polls until n requests are blocked on the pool.
func awaitWaiters(t *testing.T, p *Pool[*testObject], n uint64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.Stats().WaitCount >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d blocked acquirers", n)
}

func TestAcquire_BlocksUntilRelease(t *testing.T) {
	p := newTestPool(t, 1, 0)

	h, err := p.Acquire(PriorityNormal)
	require.NoError(t, err)

	got := make(chan *Handle[*testObject], 1)
	go func() {
		h2, _ := p.Acquire(PriorityNormal)
		got <- h2
	}()
	awaitWaiters(t, p, 1)

	select {
	case <-got:
		t.Fatal("acquire returned while the pool was exhausted")
	case <-time.After(50 * time.Millisecond):
	}

	h.Release()
	select {
	case h2 := <-got:
		require.NotNil(t, h2)
		h2.Release()
	case <-time.After(2 * time.Second):
		t.Fatal("blocked acquire was not woken by release")
	}
}

func TestAcquire_BackToBackReleasesWakeEveryWaiter(t *testing.T) {
	p := newTestPool(t, 2, 0)

	h1, _ := p.Acquire(PriorityNormal)
	h2, _ := p.Acquire(PriorityNormal)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, _ := p.Acquire(PriorityNormal)
			h.Release()
		}()
	}
	awaitWaiters(t, p, 2)

	// Both releases may land before either waiter runs; the wakes then
	// coalesce in the front waiter's channel and must be forwarded.
	h1.Release()
	h2.Release()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("a waiter stayed blocked after back-to-back releases")
	}
	assert.Equal(t, 2, p.Available())
}

func TestTryAcquireFor_Timeout(t *testing.T) {
	p := newTestPool(t, 1, 0)

	h, err := p.Acquire(PriorityNormal)
	require.NoError(t, err)

	start := time.Now()
	h2, ok := p.TryAcquireFor(50*time.Millisecond, PriorityNormal)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.Nil(t, h2)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)

	st := p.Stats()
	assert.Equal(t, uint64(1), st.TimeoutCount)
	assert.Equal(t, uint64(1), st.WaitCount)

	// An expired waiter leaves no queue entry behind.
	h.Release()
	h3, ok := p.TryAcquireFor(time.Second, PriorityNormal)
	require.True(t, ok)
	h3.Release()
}

func TestTryAcquireFor_ImmediateWhenAvailable(t *testing.T) {
	p := newTestPool(t, 2, 1)

	h, ok := p.TryAcquireFor(time.Second, PriorityNormal)
	require.True(t, ok)
	require.NotNil(t, h)
	assert.Equal(t, uint64(0), p.Stats().WaitCount)
	h.Release()
}

func TestTryAcquireFor_ZeroTimeout(t *testing.T) {
	p := newTestPool(t, 1, 0)
	h, _ := p.Acquire(PriorityNormal)

	h2, ok := p.TryAcquireFor(0, PriorityNormal)
	assert.False(t, ok)
	assert.Nil(t, h2)
	h.Release()
}

func TestAcquire_PriorityOrdering(t *testing.T) {
	p := newTestPool(t, 1, 0)

	h, err := p.Acquire(PriorityNormal)
	require.NoError(t, err)

	order := make(chan Priority, 2)
	var wg sync.WaitGroup
	block := func(pr Priority) {
		defer wg.Done()
		hh, _ := p.Acquire(pr)
		order <- pr
		time.Sleep(10 * time.Millisecond)
		hh.Release()
	}

	wg.Add(1)
	go block(PriorityLow)
	awaitWaiters(t, p, 1)
	wg.Add(1)
	go block(PriorityCritical)
	awaitWaiters(t, p, 2)

	h.Release()
	wg.Wait()

	assert.Equal(t, PriorityCritical, <-order)
	assert.Equal(t, PriorityLow, <-order)
}

func TestAcquire_FIFOWithinPriorityClass(t *testing.T) {
	p := newTestPool(t, 1, 0)
	h, _ := p.Acquire(PriorityNormal)

	order := make(chan int, 3)
	var wg sync.WaitGroup
	for i := 1; i <= 3; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			hh, _ := p.Acquire(PriorityNormal)
			order <- id
			hh.Release()
		}(i)
		awaitWaiters(t, p, uint64(i))
	}

	h.Release()
	wg.Wait()

	assert.Equal(t, 1, <-order)
	assert.Equal(t, 2, <-order)
	assert.Equal(t, 3, <-order)
}

func TestAcquireValidated_PrefersMatchingIdle(t *testing.T) {
	p := newTestPool(t, 4, 0)

	// Park two distinguishable objects. ApplyToAll marks them after the fact
	// because Release resets on the way in.
	h1, _ := p.Acquire(PriorityNormal)
	h2, _ := p.Acquire(PriorityNormal)
	h1.Release()
	h2.Release()
	marked := 0
	p.ApplyToAll(func(o *testObject) {
		marked++
		o.value = marked
	})

	h, err := p.AcquireValidated(func(o *testObject) bool { return o.value == 2 }, PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, 2, h.Object().value)
	h.Release()
}

func TestAcquireValidated_CreatesWhenNoIdleMatches(t *testing.T) {
	created := 0
	p, err := New[*testObject](2, 1, func() *testObject {
		created++
		return &testObject{}
	}, DefaultConfig[*testObject]())
	require.NoError(t, err)
	p.ApplyToAll(func(o *testObject) { o.value = 1 })

	h, err := p.AcquireValidated(func(o *testObject) bool { return o.value == 0 }, PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Object().value)
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, p.Size())
	h.Release()
}

func TestAcquireValidated_WaitsForMatch(t *testing.T) {
	p := newTestPool(t, 1, 1)
	p.ApplyToAll(func(o *testObject) { o.value = 1 })

	// Release resets the object, so the matched value is captured before the
	// handle goes back.
	got := make(chan int, 1)
	go func() {
		h, _ := p.AcquireValidated(func(o *testObject) bool { return o.value == 2 }, PriorityNormal)
		got <- h.Object().value
		h.Release()
	}()
	awaitWaiters(t, p, 1)

	// Borrow the only object, restamp it, give it back.
	h, err := p.Acquire(PriorityNormal)
	require.NoError(t, err)
	h.Release()
	// Release resets the object, so the waiter still rejects it. Mark the
	// parked object directly and hand the idle set another look.
	p.ApplyToAll(func(o *testObject) { o.value = 2 })
	p.mu.Lock()
	p.waiters.signalFront()
	p.mu.Unlock()

	select {
	case v := <-got:
		assert.Equal(t, 2, v)
	case <-time.After(2 * time.Second):
		t.Fatal("validated acquire never matched")
	}
}

func TestAcquireValidated_PanickingPredicateIsNonMatch(t *testing.T) {
	p := newTestPool(t, 2, 1)

	h, err := p.AcquireValidated(func(o *testObject) bool { panic("boom") }, PriorityNormal)
	require.NoError(t, err)
	require.NotNil(t, h)
	// The idle object was skipped, a fresh one backs the handle.
	assert.Equal(t, 2, p.Size())
	h.Release()

	// The pool stays fully operational afterwards.
	assert.Equal(t, 2, p.Available())
	h2, err := p.Acquire(PriorityNormal)
	require.NoError(t, err)
	h2.Release()
}

func TestAcquireBatch(t *testing.T) {
	p := newTestPool(t, 10, 3)

	handles, err := p.AcquireBatch(5, PriorityNormal)
	require.NoError(t, err)
	require.Len(t, handles, 5)
	assert.Equal(t, 5, p.Available())
	assert.Equal(t, 5, p.InUseCount())

	// Three reused, two created.
	st := p.Stats()
	assert.Equal(t, uint64(3), st.Hits)
	assert.Equal(t, uint64(2), st.Misses)

	ReleaseAll(handles)
	assert.Equal(t, 10, p.Available())
	assert.Equal(t, 0, p.InUseCount())
}

func TestAcquireBatch_Degenerate(t *testing.T) {
	p := newTestPool(t, 5, 0)

	handles, err := p.AcquireBatch(0, PriorityNormal)
	assert.NoError(t, err)
	assert.Empty(t, handles)

	_, err = p.AcquireBatch(-1, PriorityNormal)
	assert.ErrorIs(t, err, ErrNegativeBatch)

	_, err = p.AcquireBatch(6, PriorityNormal)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestAcquireBatch_BlocksUntilWholeBatchFits(t *testing.T) {
	p := newTestPool(t, 4, 0)

	h1, _ := p.Acquire(PriorityNormal)
	h2, _ := p.Acquire(PriorityNormal)

	got := make(chan []*Handle[*testObject], 1)
	go func() {
		handles, err := p.AcquireBatch(3, PriorityNormal)
		require.NoError(t, err)
		got <- handles
	}()
	awaitWaiters(t, p, 1)

	// Two slots free, batch needs three: still blocked.
	select {
	case <-got:
		t.Fatal("batch returned before the pool could cover it")
	case <-time.After(50 * time.Millisecond):
	}

	h1.Release()
	select {
	case handles := <-got:
		require.Len(t, handles, 3)
		ReleaseAll(handles)
	case <-time.After(2 * time.Second):
		t.Fatal("batch was not woken by release")
	}
	h2.Release()
}

func TestAcquireBatch_AtomicUnderSingleWaiters(t *testing.T) {
	p := newTestPool(t, 2, 0)

	h1, _ := p.Acquire(PriorityNormal)
	h2, _ := p.Acquire(PriorityNormal)

	got := make(chan struct{})
	go func() {
		handles, err := p.AcquireBatch(2, PriorityCritical)
		require.NoError(t, err)
		ReleaseAll(handles)
		close(got)
	}()
	awaitWaiters(t, p, 1)

	// One object back is not enough for the batch.
	h1.Release()
	select {
	case <-got:
		t.Fatal("batch proceeded on a partial fill")
	case <-time.After(50 * time.Millisecond):
	}

	h2.Release()
	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("batch never completed")
	}
}

func TestAcquireBatch_LeftoverWakeReachesNextWaiter(t *testing.T) {
	p := newTestPool(t, 3, 0)

	h1, _ := p.Acquire(PriorityNormal)
	h2, _ := p.Acquire(PriorityNormal)
	h3, _ := p.Acquire(PriorityNormal)

	got := make(chan []*Handle[*testObject], 1)
	go func() {
		handles, err := p.AcquireBatch(2, PriorityCritical)
		require.NoError(t, err)
		got <- handles
	}()
	awaitWaiters(t, p, 1)

	singleDone := make(chan struct{})
	go func() {
		h, _ := p.Acquire(PriorityLow)
		h.Release()
		close(singleDone)
	}()
	awaitWaiters(t, p, 2)

	// Three coalescing releases: the batch takes two objects and must hand
	// the surplus wake to the low-priority waiter behind it.
	h1.Release()
	h2.Release()
	h3.Release()

	var handles []*Handle[*testObject]
	select {
	case handles = <-got:
		require.Len(t, handles, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("batch never completed")
	}

	select {
	case <-singleDone:
	case <-time.After(2 * time.Second):
		t.Fatal("the waiter behind the batch was never woken")
	}
	ReleaseAll(handles)
	assert.Equal(t, 3, p.Available())
}

func TestStats_WaitTimeTracking(t *testing.T) {
	p := newTestPool(t, 1, 0)
	h, _ := p.Acquire(PriorityNormal)

	done := make(chan struct{})
	go func() {
		h2, _ := p.Acquire(PriorityNormal)
		h2.Release()
		close(done)
	}()
	awaitWaiters(t, p, 1)

	time.Sleep(30 * time.Millisecond)
	h.Release()
	<-done

	st := p.Stats()
	assert.Equal(t, uint64(1), st.WaitCount)
	assert.Greater(t, st.TotalWaitTime, time.Duration(0))
	assert.GreaterOrEqual(t, st.MaxWaitTime, st.TotalWaitTime)
}

func TestAcquire_UncontendedNeverCountsAsWait(t *testing.T) {
	p := newTestPool(t, 4, 0)
	for i := 0; i < 10; i++ {
		h, err := p.Acquire(PriorityNormal)
		require.NoError(t, err)
		h.Release()
	}
	st := p.Stats()
	assert.Zero(t, st.WaitCount)
	assert.Zero(t, st.TotalWaitTime)
}

func TestValidateOnAcquire_DiscardsStaleIdle(t *testing.T) {
	cfg := DefaultConfig[*testObject]()
	cfg.ValidateOnAcquire = true
	cfg.Validator = func(o *testObject) bool { return o.value == 0 }
	p, err := New[*testObject](4, 0, func() *testObject { return &testObject{} }, cfg)
	require.NoError(t, err)

	h, _ := p.Acquire(PriorityNormal)
	h.Release()
	p.ApplyToAll(func(o *testObject) { o.value = 99 })

	// The poisoned idle object is discarded and a fresh one created.
	h2, err := p.Acquire(PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, 0, h2.Object().value)
	assert.Equal(t, 1, p.Size())
	assert.Equal(t, uint64(2), p.Stats().Misses)
	h2.Release()
}

func TestRelease_FromAnotherGoroutine(t *testing.T) {
	p := newTestPool(t, 1, 0)
	h, err := p.Acquire(PriorityNormal)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		h.Release()
		close(done)
	}()
	<-done
	assert.Equal(t, 1, p.Available())
}
