// Package pool provides a bounded, thread-safe pool of expensive-to-construct
// objects. Objects are lent out through release-once handles, waiters are
// served in priority order, idle objects are revalidated and reaped, and the
// pool exposes runtime statistics.
//
// Example:
//
//	p, _ := pool.New[*Conn](8, 2, func() *Conn { return NewConn(addr) }, pool.DefaultConfig[*Conn]())
//	h, _ := p.Acquire(pool.PriorityNormal)
//	defer h.Release()
//	h.Object().Do(...)
package pool

import (
	"fmt"
	"sync"
	"time"
)

// Resettable constrains pooled types to those which can restore themselves to
// a deterministic clean state. The pool calls Reset on every release before an
// object is re-admitted to the idle set.
type Resettable interface {
	Reset()
}

// Creator produces a new owned object. Invoked only on a pool miss.
type Creator[T Resettable] func() T

// Pool is a bounded collection of reusable objects. All bookkeeping is guarded
// by a single RWMutex: mutations take the exclusive lock, read-only queries
// the shared one. Blocked acquirers park on per-waiter channels instead of a
// condition variable so that timed waits stay cancelable.
type Pool[T Resettable] struct {
	mu sync.RWMutex

	capacity int
	// idle objects available for lending, with parallel last-idle timestamps
	// consumed by the reaper. idleSince[i] belongs to idle[i].
	idle      []T
	idleSince []time.Time
	// free is capacity not yet backed by a live object.
	free int

	waiters waiterList
	creator Creator[T]
	cfg     Config[T]
	stats   Stats

	lastSweep time.Time
}

// New constructs a pool with the given capacity, eagerly prefilling the idle
// set with prefill objects. The zero Config disables statistics, cleanup and
// validation; see DefaultConfig for the usual starting point.
func New[T Resettable](capacity, prefill int, creator Creator[T], cfg Config[T]) (*Pool[T], error) {
	if capacity <= 0 {
		return nil, ErrZeroCapacity
	}
	if creator == nil {
		return nil, ErrNilCreator
	}
	if prefill < 0 || prefill > capacity {
		return nil, fmt.Errorf("%w: prefill=%d, capacity=%d", ErrPrefillExceedsCapacity, prefill, capacity)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &Pool[T]{
		capacity:  capacity,
		free:      capacity,
		creator:   creator,
		cfg:       cfg,
		idle:      make([]T, 0, capacity),
		idleSince: make([]time.Time, 0, capacity),
		lastSweep: time.Now(),
	}
	if err := p.Prefill(prefill); err != nil {
		return nil, err
	}
	return p, nil
}

// Prefill eagerly creates count objects and places them into the idle set,
// consuming free slots. Fails when not enough slots remain.
func (p *Pool[T]) Prefill(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: count=%d", ErrNotEnoughSlots, count)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if count > p.free {
		return fmt.Errorf("%w: count=%d, free=%d", ErrNotEnoughSlots, count, p.free)
	}
	now := time.Now()
	for i := 0; i < count; i++ {
		obj := p.createLocked()
		p.idle = append(p.idle, obj)
		p.idleSince = append(p.idleSince, now)
	}
	return nil
}

// createLocked consumes one free slot and invokes the creator. A panicking
// creator must not leak the reserved slot, so the reservation is rolled back
// before the panic propagates.
func (p *Pool[T]) createLocked() T {
	p.free--
	done := false
	defer func() {
		if !done {
			p.free++
		}
	}()
	obj := p.creator()
	done = true
	return obj
}

// Available reports how many acquires could be served right now without
// waiting: idle objects plus unconsumed capacity.
func (p *Pool[T]) Available() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.idle) + p.free
}

// Size reports how many objects currently exist under pool management,
// whether idle or lent out.
func (p *Pool[T]) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.idle) + p.inUseLocked()
}

// InUseCount reports how many objects are currently lent out.
func (p *Pool[T]) InUseCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.inUseLocked()
}

// Capacity reports the configured maximal number of objects.
func (p *Pool[T]) Capacity() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.capacity
}

func (p *Pool[T]) inUseLocked() int {
	return p.capacity - p.free - len(p.idle)
}

// Clear destroys all currently idle objects and returns their slots to the
// pool. In-flight handles are not intercepted; their objects re-enter the
// idle set on release as usual.
func (p *Pool[T]) Clear() {
	p.mu.Lock()
	p.free += len(p.idle)
	p.dropIdleRefsLocked()
	p.idle = p.idle[:0]
	p.idleSince = p.idleSince[:0]
	p.mu.Unlock()
}

// dropIdleRefsLocked zeroes idle slots so discarded objects become
// collectable even while the backing arrays are retained.
func (p *Pool[T]) dropIdleRefsLocked() {
	var zero T
	for i := range p.idle {
		p.idle[i] = zero
	}
}

// Resize changes the pool capacity. Shrinking below the number of lent-out
// objects fails and leaves the pool untouched. Shrinking consumes free slots
// first and destroys the oldest idle objects when that is not enough. Growth
// wakes all waiters: a previously unsatisfiable batch may now proceed.
func (p *Pool[T]) Resize(capacity int) error {
	if capacity <= 0 {
		return ErrZeroCapacity
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	inUse := p.inUseLocked()
	if capacity < inUse {
		return fmt.Errorf("%w: capacity=%d, inUse=%d", ErrResizeBelowInUse, capacity, inUse)
	}

	grown := capacity > p.capacity
	p.capacity = capacity
	p.free = capacity - inUse - len(p.idle)
	if p.free < 0 {
		// Not enough room for every idle object: evict the oldest ones.
		drop := -p.free
		var zero T
		for i := 0; i < drop; i++ {
			p.idle[i] = zero
		}
		p.idle = append(p.idle[:0], p.idle[drop:]...)
		p.idleSince = append(p.idleSince[:0], p.idleSince[drop:]...)
		p.free = 0
	}
	if grown {
		p.waiters.signalAll()
	}
	return nil
}

// ApplyToAll runs f over every currently idle object under the exclusive
// lock. Lent-out objects are exclusively owned by their handle holders and
// are never touched.
func (p *Pool[T]) ApplyToAll(f func(T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, obj := range p.idle {
		f(obj)
	}
}

// Reconfigure atomically swaps the pool configuration. Takes effect for all
// subsequent operations; a stats toggle is visible immediately.
func (p *Pool[T]) Reconfigure(cfg Config[T]) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
	return nil
}

// release transfers ownership of obj back to the pool. Exactly-once semantics
// are enforced by the Handle. Safe to call from any goroutine.
func (p *Pool[T]) release(obj T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.admitLocked(obj) {
		p.idle = append(p.idle, obj)
		p.idleSince = append(p.idleSince, time.Now())
	} else {
		// Invalid, or the pool shrank: discard and return the slot.
		p.free++
	}
	p.waiters.signalFront()
}

// admitLocked validates and resets obj, reporting whether it may re-enter the
// idle set. A panicking validator or Reset counts as a failed validation:
// release itself never fails.
func (p *Pool[T]) admitLocked(obj T) (ok bool) {
	if len(p.idle) >= p.capacity || p.inUseLocked() <= 0 {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	if p.cfg.ValidateOnRelease && p.cfg.Validator != nil && !p.cfg.Validator(obj) {
		return false
	}
	obj.Reset()
	return true
}
