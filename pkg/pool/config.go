package pool

import "time"

// Validator reports whether a pooled object is still usable.
type Validator[T Resettable] func(T) bool

// Config controls statistics, idle cleanup and validation behaviour of a Pool.
// The zero value is a valid configuration with everything switched off.
type Config[T Resettable] struct {
	// EnableStats turns statistics counters on. When disabled, Stats()
	// returns a zeroed snapshot and no counter is ever incremented.
	EnableStats bool

	// AutoCleanup enables the idle reaper: opportunistic sweeps on acquire
	// and the background janitor (see RunJanitor).
	AutoCleanup bool
	// CleanupInterval is the minimal pause between two non-forced sweeps.
	CleanupInterval time.Duration
	// MaxIdleTime is how long an object may sit idle before the reaper
	// destroys it. Zero expires idle objects immediately.
	MaxIdleTime time.Duration

	// ValidateOnAcquire runs Validator against idle candidates while serving
	// an acquire; failed objects are discarded and their slot reclaimed.
	ValidateOnAcquire bool
	// ValidateOnRelease runs Validator on release; failed objects are
	// discarded instead of being re-admitted to the idle set.
	ValidateOnRelease bool
	// Validator is consulted by the two flags above. Nil disables validation.
	Validator Validator[T]
}

// DefaultConfig is the usual starting point: statistics on, cleanup and
// validation off.
func DefaultConfig[T Resettable]() Config[T] {
	return Config[T]{EnableStats: true}
}

func (c Config[T]) validate() error {
	if c.CleanupInterval < 0 {
		return ErrNegativeInterval
	}
	if c.MaxIdleTime < 0 {
		return ErrNegativeMaxIdle
	}
	return nil
}
