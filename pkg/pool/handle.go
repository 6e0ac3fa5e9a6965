package pool

import "sync/atomic"

// Handle is the exclusive loan token for one pooled object. For the lifetime
// of the handle the object belongs to the holder alone; the pool never reads
// or writes it. Release returns ownership exactly once: repeated calls are
// no-ops, so deferring Release next to error-path releases stays safe.
type Handle[T Resettable] struct {
	pool     *Pool[T]
	obj      T
	released atomic.Bool
}

func newHandle[T Resettable](p *Pool[T], obj T) *Handle[T] {
	return &Handle[T]{pool: p, obj: obj}
}

// Object exposes the borrowed object. After Release it returns the zero
// value, a released handle must not be used.
func (h *Handle[T]) Object() T {
	return h.obj
}

// Release hands the object back to the pool: it is revalidated, reset and
// either re-admitted to the idle set or discarded. Safe to call from any
// goroutine, including one different from the acquiring goroutine.
func (h *Handle[T]) Release() {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return
	}
	obj := h.obj
	var zero T
	h.obj = zero
	h.pool.release(obj)
}

// ReleaseAll releases every handle of a batch. Nil-safe.
func ReleaseAll[T Resettable](handles []*Handle[T]) {
	for _, h := range handles {
		h.Release()
	}
}
