package pool

import "errors"

// -----------------------------------------------------------------------------
// Errors.
// -----------------------------------------------------------------------------

var (
	ErrZeroCapacity           = errors.New("pool capacity must be greater than zero")
	ErrNilCreator             = errors.New("pool creator factory must not be nil")
	ErrPrefillExceedsCapacity = errors.New("prefill count exceeds pool capacity")
	ErrNotEnoughSlots         = errors.New("not enough free slots to prefill")
	ErrNegativeBatch          = errors.New("batch size must not be negative")
	ErrResizeBelowInUse       = errors.New("cannot resize below the number of objects in use")
	ErrExhausted              = errors.New("pool exhausted: request can never be satisfied")
	ErrNegativeInterval       = errors.New("cleanup interval must not be negative")
	ErrNegativeMaxIdle        = errors.New("max idle time must not be negative")
)
