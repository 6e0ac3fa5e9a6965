package pool

import (
	"context"

	"github.com/Borislavv/advanced-pool/internal/pool/api"
	"github.com/Borislavv/advanced-pool/internal/pool/server"
	"github.com/Borislavv/advanced-pool/pkg/config"
	"github.com/Borislavv/advanced-pool/pkg/k8s/probe/liveness"
	pkgpool "github.com/Borislavv/advanced-pool/pkg/pool"
	"github.com/Borislavv/advanced-pool/pkg/prometheus/metrics"
	"github.com/Borislavv/advanced-pool/pkg/shutdown"
	"github.com/Borislavv/advanced-pool/pkg/upstream"
	"github.com/rs/zerolog/log"
)

// App defines the pool daemon lifecycle interface.
type App interface {
	Start()
}

// Daemon encapsulates the entire pool application state, including the
// connection pool, HTTP server, config, and probes.
type Daemon struct {
	cfg      *config.Config
	ctx      context.Context
	cancel   context.CancelFunc
	probe    liveness.Prober
	meter    metrics.Meter
	pool     *api.ConnPool
	workload *Workload
	server   server.Http
}

// NewApp builds a new Daemon, wiring together the pool, workload, and server.
func NewApp(ctx context.Context, cfg *config.Config, probe liveness.Prober) (*Daemon, error) {
	ctx, cancel := context.WithCancel(ctx)

	meter := metrics.New()

	p, err := pkgpool.New[*upstream.Conn](
		cfg.Pool.Capacity,
		cfg.Pool.Prefill,
		func() *upstream.Conn { return upstream.NewConn(cfg) },
		poolConfig(cfg),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	daemon := &Daemon{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		probe:    probe,
		meter:    meter,
		pool:     p,
		workload: NewWorkload(ctx, cfg, p),
	}

	// Compose the HTTP server (API, metrics and so on)
	srv, err := server.New(ctx, cfg, p, probe, meter, daemon.workload.Enabled())
	if err != nil {
		cancel()
		return nil, err
	}
	daemon.server = srv

	registerPoolGauges(meter, p)

	return daemon, nil
}

// poolConfig maps the daemon yaml onto the pool configuration. Connections
// which failed their last request are discarded on acquire.
func poolConfig(cfg *config.Config) pkgpool.Config[*upstream.Conn] {
	return pkgpool.Config[*upstream.Conn]{
		EnableStats:       cfg.Pool.Stats.Enabled,
		AutoCleanup:       cfg.Pool.Cleanup.Enabled,
		CleanupInterval:   cfg.Pool.Cleanup.Interval,
		MaxIdleTime:       cfg.Pool.Cleanup.MaxIdle,
		ValidateOnAcquire: cfg.Pool.Validate.OnAcquire,
		ValidateOnRelease: cfg.Pool.Validate.OnRelease,
		Validator:         func(c *upstream.Conn) bool { return c.IsAlive() },
	}
}

// Start runs the pool server, janitor, workload and liveness probe, and
// handles graceful shutdown. The Gracefuller is expected to be awaited by the
// caller; Done is called when shutdown is complete.
func (d *Daemon) Start(gc shutdown.Gracefuller) {
	defer func() {
		d.stop()
		gc.Done()
	}()

	log.Info().Msg("[app] starting pool daemon")

	d.pool.RunJanitor(d.ctx)
	d.workload.Run()
	runStatsCollector(d.ctx, d.meter, d.pool)

	waitCh := make(chan struct{})

	go func() {
		defer close(waitCh)
		d.probe.Watch(d) // Call first due to it does not block the green-thread
		d.server.Start() // Blocks the green-thread until the server will be stopped
	}()

	log.Info().Msg("[app] pool daemon has been started")

	<-waitCh // Wait until the server exits
}

// stop cancels the main application context and tears down pooled connections.
func (d *Daemon) stop() {
	log.Info().Msg("[app] stopping pool daemon")

	defer d.cancel()

	d.pool.ApplyToAll(func(c *upstream.Conn) { c.Close() })
	d.pool.Clear()

	log.Info().Msg("[app] pool daemon has been stopped")
}

// IsAlive is called by liveness probes to check app health.
// Returns false if the HTTP server is not alive.
func (d *Daemon) IsAlive(_ context.Context) bool {
	if !d.server.IsAlive() {
		log.Info().Msg("[app] http server has gone away")
		return false
	}
	return true
}
