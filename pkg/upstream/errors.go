package upstream

import "errors"

// -----------------------------------------------------------------------------
// Errors.
// -----------------------------------------------------------------------------

var (
	ErrNilUpstreamConfig = errors.New("nil upstream config")
	ErrUpstreamTimeout   = errors.New("upstream request timed out")
	ErrBadStatus         = errors.New("upstream responded with non-2xx status")
)
