package pool

import (
	"fmt"
	"time"
)

// Acquire lends one object, blocking indefinitely while the pool is busy.
// Waiters are served in priority order. The error is reserved for requests
// the pool can never satisfy; ordinary contention blocks instead of failing.
func (p *Pool[T]) Acquire(priority Priority) (*Handle[T], error) {
	h, _ := p.acquireOne(priority, nil, false, 0)
	return h, nil
}

// TryAcquireFor behaves like Acquire but gives up after timeout. A timeout is
// not an error: the second return value is false and no handle is produced.
// The expired waiter removes its own queue entry, no state is leaked.
func (p *Pool[T]) TryAcquireFor(timeout time.Duration, priority Priority) (*Handle[T], bool) {
	return p.acquireOne(priority, nil, true, timeout)
}

// AcquireValidated lends the first idle object satisfying pred, or a freshly
// created one while capacity remains. When neither exists it keeps waiting:
// it never falls back to an idle object rejected by pred. A panicking pred
// counts as a non-match.
func (p *Pool[T]) AcquireValidated(pred func(T) bool, priority Priority) (*Handle[T], error) {
	h, _ := p.acquireOne(priority, pred, false, 0)
	return h, nil
}

// acquireOne is the shared core of the single-object acquire variants.
func (p *Pool[T]) acquireOne(priority Priority, pred func(T) bool, timed bool, timeout time.Duration) (*Handle[T], bool) {
	var (
		w     *waiter
		start time.Time
		timer *time.Timer
	)
	if timed {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
	}

	p.mu.Lock()
	for {
		p.maybeSweepLocked()

		if p.waiters.mayProceed(w, priority) {
			if obj, ok := p.popIdleLocked(pred); ok {
				p.finishWaitLocked(w, start)
				if p.cfg.EnableStats {
					p.stats.Hits++
				}
				p.notePeakLocked()
				p.forwardWakeLocked()
				p.mu.Unlock()
				return newHandle(p, obj), true
			}
			if p.free > 0 {
				p.finishWaitLocked(w, start)
				obj := p.createOrUnlockLocked()
				if p.cfg.EnableStats {
					p.stats.Misses++
				}
				p.notePeakLocked()
				p.forwardWakeLocked()
				p.mu.Unlock()
				return newHandle(p, obj), true
			}
		}

		if w == nil {
			w = &waiter{priority: priority, ready: make(chan struct{}, 1)}
			p.waiters.push(w)
			start = time.Now()
			if p.cfg.EnableStats {
				p.stats.WaitCount++
			}
		} else if p.availableLocked() > 0 && p.waiters.front() != w {
			// The wake we consumed belongs to somebody else now: pass it on.
			p.waiters.signalFront()
		}
		p.mu.Unlock()

		if timed {
			select {
			case <-w.ready:
			case <-timer.C:
				return p.abandonWait(w)
			}
		} else {
			<-w.ready
		}
		p.mu.Lock()
	}
}

// AcquireBatch atomically lends count objects as a unit, blocking until the
// pool can cover the whole batch. Idle objects are preferred, the remainder
// is created from free capacity. A batch larger than the pool capacity can
// never be satisfied and fails immediately with ErrExhausted.
func (p *Pool[T]) AcquireBatch(count int, priority Priority) ([]*Handle[T], error) {
	if count < 0 {
		return nil, ErrNegativeBatch
	}
	if count == 0 {
		return nil, nil
	}

	var (
		w     *waiter
		start time.Time
	)
	p.mu.Lock()
	for {
		if count > p.capacity {
			// Unsatisfiable now and forever (unless somebody resizes, but we
			// do not wait on a promise): fail instead of blocking eternally.
			if w != nil {
				p.waiters.remove(w)
			}
			p.mu.Unlock()
			return nil, fmt.Errorf("%w: batch=%d, capacity=%d", ErrExhausted, count, p.capacity)
		}
		p.maybeSweepLocked()

		if p.waiters.mayProceed(w, priority) && p.availableLocked() >= count {
			if handles, ok := p.takeBatchLocked(w, start, count); ok {
				p.mu.Unlock()
				return handles, nil
			}
			// Acquire-time validation discarded enough idle objects to sink
			// the batch; fall through and wait for more releases.
		}

		if w == nil {
			w = &waiter{priority: priority, ready: make(chan struct{}, 1)}
			p.waiters.push(w)
			start = time.Now()
			if p.cfg.EnableStats {
				p.stats.WaitCount++
			}
		} else if p.availableLocked() > 0 && p.waiters.front() != w {
			p.waiters.signalFront()
		}
		p.mu.Unlock()

		<-w.ready
		p.mu.Lock()
	}
}

// takeBatchLocked carves count objects out of the pool. Returns ok=false and
// rolls everything back when validation discards shrink availability below
// the batch size mid-flight.
func (p *Pool[T]) takeBatchLocked(w *waiter, start time.Time, count int) ([]*Handle[T], bool) {
	taken := make([]T, 0, count)
	for len(taken) < count {
		obj, ok := p.popIdleLocked(nil)
		if !ok {
			break
		}
		taken = append(taken, obj)
	}
	if len(taken)+p.free < count {
		// Roll back: the popped objects are untouched, re-park them.
		now := time.Now()
		for _, obj := range taken {
			p.idle = append(p.idle, obj)
			p.idleSince = append(p.idleSince, now)
		}
		return nil, false
	}

	hits := len(taken)
	p.finishWaitLocked(w, start)
	for len(taken) < count {
		taken = append(taken, p.createBatchOrUnlockLocked(taken))
	}
	if p.cfg.EnableStats {
		p.stats.Hits += uint64(hits)
		p.stats.Misses += uint64(count - hits)
	}
	p.notePeakLocked()
	p.forwardWakeLocked()

	handles := make([]*Handle[T], 0, count)
	for _, obj := range taken {
		handles = append(handles, newHandle(p, obj))
	}
	return handles, true
}

// createOrUnlockLocked invokes the creator for a reserved slot. When the
// creator panics, the slot reservation is already rolled back by
// createLocked; this wrapper additionally hands the freed slot to the next
// waiter and releases the lock before re-panicking.
func (p *Pool[T]) createOrUnlockLocked() T {
	defer func() {
		if r := recover(); r != nil {
			p.waiters.signalFront()
			p.mu.Unlock()
			panic(r)
		}
	}()
	return p.createLocked()
}

// createBatchOrUnlockLocked is createOrUnlockLocked for batch assembly: the
// already carved-out objects are re-parked before the panic propagates.
func (p *Pool[T]) createBatchOrUnlockLocked(taken []T) T {
	defer func() {
		if r := recover(); r != nil {
			now := time.Now()
			for _, obj := range taken {
				p.idle = append(p.idle, obj)
				p.idleSince = append(p.idleSince, now)
			}
			p.waiters.signalFront()
			p.mu.Unlock()
			panic(r)
		}
	}()
	return p.createLocked()
}

// forwardWakeLocked re-signals the front waiter when objects remain after a
// successful take. Back-to-back releases coalesce in the front waiter's
// buffered channel, so the taker must pass the surplus wake along or the
// next waiter stays blocked beside an idle object.
func (p *Pool[T]) forwardWakeLocked() {
	if p.availableLocked() > 0 {
		p.waiters.signalFront()
	}
}

// abandonWait removes the expired waiter and accounts the timeout. A wake
// racing with the timer is forwarded to the next waiter so it is not lost.
func (p *Pool[T]) abandonWait(w *waiter) (*Handle[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-w.ready:
		p.waiters.remove(w)
		p.waiters.signalFront()
	default:
		p.waiters.remove(w)
	}
	if p.cfg.EnableStats {
		p.stats.TimeoutCount++
	}
	return nil, false
}

// finishWaitLocked dequeues the waiter (if the request had to wait at all)
// and accounts its wait time.
func (p *Pool[T]) finishWaitLocked(w *waiter, start time.Time) {
	if w == nil {
		return
	}
	p.waiters.remove(w)
	p.noteWaitLocked(time.Since(start))
}

// popIdleLocked removes and returns an idle object to lend. Without a
// predicate the most recently parked object is preferred (warm reuse); with
// one, the oldest matching object wins. Objects failing acquire-time
// validation are discarded on the way and their slots reclaimed.
func (p *Pool[T]) popIdleLocked(pred func(T) bool) (T, bool) {
	var zero T
	validate := p.cfg.ValidateOnAcquire && p.cfg.Validator != nil

	if pred == nil {
		for n := len(p.idle); n > 0; n = len(p.idle) {
			obj := p.idle[n-1]
			p.removeIdleAtLocked(n - 1)
			if validate && !p.safeValidate(obj) {
				p.free++
				continue
			}
			return obj, true
		}
		return zero, false
	}

	for i := 0; i < len(p.idle); i++ {
		obj := p.idle[i]
		if validate && !p.safeValidate(obj) {
			p.removeIdleAtLocked(i)
			p.free++
			i--
			continue
		}
		if p.safeMatch(pred, obj) {
			p.removeIdleAtLocked(i)
			return obj, true
		}
	}
	return zero, false
}

func (p *Pool[T]) removeIdleAtLocked(i int) {
	var zero T
	copy(p.idle[i:], p.idle[i+1:])
	p.idle[len(p.idle)-1] = zero
	p.idle = p.idle[:len(p.idle)-1]
	copy(p.idleSince[i:], p.idleSince[i+1:])
	p.idleSince = p.idleSince[:len(p.idleSince)-1]
}

// safeMatch treats a panicking predicate as a non-match. The predicate runs
// under the pool lock, so the panic must never escape with the lock held.
func (p *Pool[T]) safeMatch(pred func(T) bool, obj T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return pred(obj)
}

// safeValidate treats a panicking validator as a failed validation.
func (p *Pool[T]) safeValidate(obj T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return p.cfg.Validator(obj)
}

func (p *Pool[T]) availableLocked() int {
	return len(p.idle) + p.free
}
