package pool

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Borislavv/advanced-pool/internal/pool/api"
	"github.com/Borislavv/advanced-pool/pkg/config"
	"github.com/Borislavv/advanced-pool/pkg/mock"
	pkgpool "github.com/Borislavv/advanced-pool/pkg/pool"
	"github.com/Borislavv/advanced-pool/pkg/rate"
	"github.com/Borislavv/advanced-pool/pkg/utils"
	"github.com/rs/zerolog/log"
)

const acquireTimeout = 250 * time.Millisecond

// Workload drives synthetic traffic through the pool: a set of workers
// acquires connections at a paced rate, performs real or simulated requests
// and releases them. It exists so a freshly deployed daemon exercises the
// pool (and its metrics) without any external caller.
type Workload struct {
	ctx     context.Context
	cfg     *config.Config
	pool    *api.ConnPool
	enabled atomic.Bool
	limiter *rate.Limiter

	count    atomic.Int64 // served acquires per window
	duration atomic.Int64 // summed latency per window, unix nanos
	timeouts atomic.Int64 // acquire timeouts per window
}

func NewWorkload(ctx context.Context, cfg *config.Config, p *api.ConnPool) *Workload {
	w := &Workload{ctx: ctx, cfg: cfg, pool: p}
	w.enabled.Store(cfg.Pool.Workload.Enabled)
	if cfg.Pool.Workload.Rate > 0 {
		w.limiter = rate.NewLimiter(ctx, cfg.Pool.Workload.Rate)
	}
	return w
}

// Enabled exposes the shared on-off flag consumed by the API controller.
func (w *Workload) Enabled() *atomic.Bool {
	return &w.enabled
}

// Run spawns the worker goroutines and the window logger. Non-blocking.
func (w *Workload) Run() {
	for i := 0; i < w.cfg.Pool.Workload.Workers; i++ {
		go w.worker(i)
	}
	w.runLogger()
	log.Info().Msgf("[workload] started %d workers (rate: %d/s)",
		w.cfg.Pool.Workload.Workers, w.cfg.Pool.Workload.Rate)
}

func (w *Workload) worker(id int) {
	// Worker id decides the priority class, so every class stays exercised.
	priority := pkgpool.Priority(id % 4)

	for query := range mock.StreamQueries(w.ctx, 0) {
		if !w.enabled.Load() {
			select {
			case <-w.ctx.Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		if w.limiter != nil {
			w.limiter.Take()
		}
		w.serve(query, priority)
	}
}

func (w *Workload) serve(query *mock.Query, priority pkgpool.Priority) {
	from := time.Now()

	h, ok := w.pool.TryAcquireFor(acquireTimeout, priority)
	if !ok {
		w.timeouts.Add(1)
		return
	}
	defer h.Release()

	conn := h.Object()
	if w.cfg.Pool.Upstream.Addr != "" {
		if _, _, err := conn.Fetch(query.Path, query.Query); err != nil {
			log.Debug().Err(err).Msg("[workload] upstream fetch failed")
		}
	} else {
		// No backend wired: burn the simulated cost instead.
		time.Sleep(query.Cost)
	}

	w.count.Add(1)
	w.duration.Add(time.Since(from).Nanoseconds())
}

// runLogger periodically logs worked queries and avg duration per window.
func (w *Workload) runLogger() {
	go func() {
		t := utils.NewTicker(w.ctx, time.Second*5)
		for {
			select {
			case <-w.ctx.Done():
				return
			case <-t:
				w.logAndReset()
			}
		}
	}()
}

// logAndReset prints and resets stat counters for a given window (5s).
func (w *Workload) logAndReset() {
	const secs int64 = 5

	var (
		avg      string
		cnt      = w.count.Load()
		dur      = time.Duration(w.duration.Load())
		timeouts = w.timeouts.Load()
		rps      = strconv.Itoa(int(cnt / secs))
	)

	if cnt <= 0 && timeouts <= 0 {
		return
	}
	if cnt > 0 {
		avg = (dur / time.Duration(cnt)).String()
	}

	logEvent := log.Info()

	if w.cfg.IsProd() {
		logEvent.
			Str("target", "workload").
			Str("rps", rps).
			Str("served", strconv.Itoa(int(cnt))).
			Str("timeouts", strconv.Itoa(int(timeouts))).
			Str("periodMs", "5000").
			Str("avgDuration", avg)
	}

	logEvent.Msgf("[workload][5s] served %d acquires (rps: %s, timeouts: %d, avgDuration: %s)",
		cnt, rps, timeouts, avg)

	w.count.Store(0)
	w.duration.Store(0)
	w.timeouts.Store(0)
}
