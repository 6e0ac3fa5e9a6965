// Package rate paces the synthetic workload with a leaky-bucket limiter.
package rate

import (
	"context"

	"go.uber.org/ratelimit"
)

// Limiter spreads callers evenly over a second. Blocking callers use Take,
// select-based consumers drain Chan.
type Limiter struct {
	cancel    context.CancelFunc
	ch        chan struct{}
	bucket    ratelimit.Limiter
	perSecond int
}

func NewLimiter(ctx context.Context, perSecond int) *Limiter {
	ctx, cancel := context.WithCancel(ctx)
	l := &Limiter{
		cancel:    cancel,
		perSecond: perSecond,
		ch:        make(chan struct{}),
		bucket:    ratelimit.New(perSecond),
	}
	go l.feed(ctx)
	return l
}

// feed publishes one token per permitted slot until the context ends.
func (l *Limiter) feed(ctx context.Context) {
	defer close(l.ch)
	for {
		l.bucket.Take()
		select {
		case <-ctx.Done():
			return
		case l.ch <- struct{}{}:
		}
	}
}

// Take blocks until the next permitted slot.
func (l *Limiter) Take() {
	l.bucket.Take()
}

// PerSecond reports the configured rate.
func (l *Limiter) PerSecond() int {
	return l.perSecond
}

// Chan exposes the paced token stream. Closed when the limiter stops.
func (l *Limiter) Chan() <-chan struct{} {
	return l.ch
}

func (l *Limiter) Stop() {
	l.cancel()
}
