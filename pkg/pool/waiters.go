package pool

// waiter is one blocked acquirer. Its ready channel carries at most one
// pending wake; the woken goroutine re-evaluates the full acquire predicate
// under the lock, so a stale wake is harmless.
type waiter struct {
	priority Priority
	ready    chan struct{}
}

// waiterList keeps blocked acquirers ordered by priority (highest first),
// FIFO within the same priority class. The list is always mutated under the
// pool's exclusive lock, so plain slice surgery is enough.
type waiterList struct {
	items []*waiter
}

// push inserts w behind all waiters of the same or higher priority.
func (l *waiterList) push(w *waiter) {
	i := len(l.items)
	for ; i > 0; i-- {
		if l.items[i-1].priority >= w.priority {
			break
		}
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = w
}

// remove deletes w from the list. No-op if w is not present.
func (l *waiterList) remove(w *waiter) {
	for i, cur := range l.items {
		if cur == w {
			copy(l.items[i:], l.items[i+1:])
			l.items[len(l.items)-1] = nil
			l.items = l.items[:len(l.items)-1]
			return
		}
	}
}

func (l *waiterList) len() int { return len(l.items) }

// front returns the highest-priority waiter, nil when nobody waits.
func (l *waiterList) front() *waiter {
	if len(l.items) == 0 {
		return nil
	}
	return l.items[0]
}

// signal wakes w unless a wake is already pending.
func (l *waiterList) signal(w *waiter) {
	select {
	case w.ready <- struct{}{}:
	default:
	}
}

// signalFront wakes the highest-priority waiter, if any.
func (l *waiterList) signalFront() {
	if w := l.front(); w != nil {
		l.signal(w)
	}
}

// signalAll wakes every waiter. Used when capacity grows and previously
// unsatisfiable requests (large batches) may now proceed.
func (l *waiterList) signalAll() {
	for _, w := range l.items {
		l.signal(w)
	}
}

// mayProceed reports whether a caller with the given priority is allowed to
// take objects right now: it must be at least as urgent as the most urgent
// waiter other than itself. Equal-priority callers may overtake each other,
// strict FIFO inside one class is not guaranteed.
func (l *waiterList) mayProceed(self *waiter, priority Priority) bool {
	for _, w := range l.items {
		if w == self {
			continue
		}
		return priority >= w.priority
	}
	return true
}
