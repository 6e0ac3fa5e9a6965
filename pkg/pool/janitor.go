package pool

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunCleanup sweeps the idle set and destroys objects which sat idle longer
// than the configured MaxIdleTime, returning how many were removed. Without
// force the sweep is rate-limited by CleanupInterval. No-op while auto
// cleanup is disabled.
func (p *Pool[T]) RunCleanup(force bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sweepLocked(force, time.Now())
}

// maybeSweepLocked is the opportunistic pre-acquire sweep: a cheap elapsed
// check, the real partitioning runs at most once per CleanupInterval.
func (p *Pool[T]) maybeSweepLocked() {
	if !p.cfg.AutoCleanup || time.Since(p.lastSweep) < p.cfg.CleanupInterval {
		return
	}
	p.sweepLocked(false, time.Now())
}

func (p *Pool[T]) sweepLocked(force bool, now time.Time) int {
	if !p.cfg.AutoCleanup {
		return 0
	}
	if !force && now.Sub(p.lastSweep) < p.cfg.CleanupInterval {
		return 0
	}
	p.lastSweep = now

	var zero T
	removed := 0
	kept := 0
	for i := 0; i < len(p.idle); i++ {
		if now.Sub(p.idleSince[i]) >= p.cfg.MaxIdleTime {
			p.idle[i] = zero
			removed++
			continue
		}
		p.idle[kept] = p.idle[i]
		p.idleSince[kept] = p.idleSince[i]
		kept++
	}
	if removed == 0 {
		return 0
	}
	for i := kept; i < len(p.idle); i++ {
		p.idle[i] = zero
	}
	p.idle = p.idle[:kept]
	p.idleSince = p.idleSince[:kept]
	p.free += removed
	if p.cfg.EnableStats {
		p.stats.Cleanups += uint64(removed)
	}
	return removed
}

// RunJanitor starts the background reaper: periodic sweeps driven by
// CleanupInterval, with a 5s summary log line. The AutoCleanup switch and
// the cadence are re-read on every tick, so Reconfigure takes effect on a
// running janitor. Stops with the context.
func (p *Pool[T]) RunJanitor(ctx context.Context) {
	go func() {
		var (
			removedPer5Sec int
			sweep          = time.NewTicker(p.sweepInterval())
			report         = time.NewTicker(5 * time.Second)
		)
		defer sweep.Stop()
		defer report.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-sweep.C:
				removedPer5Sec += p.RunCleanup(false)
				sweep.Reset(p.sweepInterval())
			case <-report.C:
				if removedPer5Sec <= 0 {
					continue
				}
				log.Info().Msgf("[janitor][5s] reaped %d idle objects, available: %d, in use: %d",
					removedPer5Sec, p.Available(), p.InUseCount())
				removedPer5Sec = 0
			}
		}
	}()
}

// sweepInterval returns the current cleanup cadence. Falls back to one second
// so a disabled or zero-interval janitor still polls for reconfiguration.
func (p *Pool[T]) sweepInterval() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cfg.CleanupInterval > 0 {
		return p.cfg.CleanupInterval
	}
	return time.Second
}
