package pool

import "time"

// Stats is a point-in-time snapshot of pool counters.
type Stats struct {
	// Hits is the number of acquires served from the idle set.
	Hits uint64 `json:"hits"`
	// Misses is the number of acquires that had to create a new object.
	Misses uint64 `json:"misses"`
	// Cleanups is the total number of idle objects destroyed by the reaper.
	Cleanups uint64 `json:"cleanups"`
	// PeakUsage is the maximal number of simultaneously lent objects.
	PeakUsage uint64 `json:"peakUsage"`
	// WaitCount is the number of requests that had to block.
	WaitCount uint64 `json:"waitCount"`
	// TimeoutCount is the number of TryAcquireFor calls that expired.
	TimeoutCount uint64 `json:"timeoutCount"`
	// TotalWaitTime is the summed wait duration of all served requests.
	TotalWaitTime time.Duration `json:"totalWaitTime"`
	// MaxWaitTime is the longest wait of a single served request.
	MaxWaitTime time.Duration `json:"maxWaitTime"`
}

// Stats returns the current counters, or a zeroed snapshot when statistics
// are disabled. Read-only, takes the shared lock.
func (p *Pool[T]) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.cfg.EnableStats {
		return Stats{}
	}
	return p.stats
}

// ResetStats zeroes all counters.
func (p *Pool[T]) ResetStats() {
	p.mu.Lock()
	p.stats = Stats{}
	p.mu.Unlock()
}

// noteWaitLocked accumulates wait-time counters for a served request.
func (p *Pool[T]) noteWaitLocked(waited time.Duration) {
	if !p.cfg.EnableStats {
		return
	}
	p.stats.TotalWaitTime += waited
	if waited > p.stats.MaxWaitTime {
		p.stats.MaxWaitTime = waited
	}
}

// notePeakLocked refreshes the peak-usage mark after objects were lent out.
func (p *Pool[T]) notePeakLocked() {
	if !p.cfg.EnableStats {
		return
	}
	if inUse := uint64(p.inUseLocked()); inUse > p.stats.PeakUsage {
		p.stats.PeakUsage = inUse
	}
}
