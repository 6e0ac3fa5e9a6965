// Package ctime is a coarse process-wide clock. One goroutine stamps the
// current time into an atomic at a fixed resolution; tickers and window
// loggers read the stamp instead of calling time.Now on every iteration.
package ctime

import (
	"sync/atomic"
	"time"
)

var stampUnixNano atomic.Int64

// Start runs the clock at the given resolution and returns a stop function.
// Until Start is called the clock stands still at the zero time.
func Start(resolution time.Duration) func() {
	stampUnixNano.Store(time.Now().UnixNano())
	ticker := time.NewTicker(resolution)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				stampUnixNano.Store(now.UnixNano())
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}

// Now returns the last stamped wall-clock time. Stale by at most one
// resolution step.
func Now() time.Time { return time.Unix(0, stampUnixNano.Load()) }

// UnixNano returns the last stamp in unix nanoseconds.
func UnixNano() int64 { return stampUnixNano.Load() }

// Since reports the coarse elapsed time since t.
func Since(t time.Time) time.Duration { return Now().Sub(t) }
