package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Borislavv/advanced-pool/internal/pool/api"
	"github.com/Borislavv/advanced-pool/pkg/config"
	httpserver "github.com/Borislavv/advanced-pool/pkg/http/server"
	"github.com/Borislavv/advanced-pool/pkg/http/server/controller"
	"github.com/Borislavv/advanced-pool/pkg/http/server/middleware"
	"github.com/Borislavv/advanced-pool/pkg/k8s/probe/liveness"
	"github.com/Borislavv/advanced-pool/pkg/prometheus/metrics"
	metricscontroller "github.com/Borislavv/advanced-pool/pkg/prometheus/metrics/controller"
	metricsmiddleware "github.com/Borislavv/advanced-pool/pkg/prometheus/metrics/middleware"
	"github.com/rs/zerolog/log"
)

var (
	InitFailedErrorMessage = "[server] init. failed"
)

// Http interface exposes methods for starting and liveness probing.
type Http interface {
	Start()
	IsAlive() bool
}

// HttpServer implements Http, wraps all dependencies required for running the HTTP server.
type HttpServer struct {
	ctx           context.Context
	cfg           *config.Config
	pool          *api.ConnPool
	probe         liveness.Prober
	metrics       metrics.Meter
	workload      *atomic.Bool
	server        httpserver.Server
	isServerAlive *atomic.Bool
}

// New creates a new HttpServer, initializing metrics and the HTTP server itself.
// If any step fails, returns an error and performs cleanup.
func New(
	ctx context.Context,
	cfg *config.Config,
	pool *api.ConnPool,
	probe liveness.Prober,
	meter metrics.Meter,
	workload *atomic.Bool,
) (*HttpServer, error) {
	var err error

	srv := &HttpServer{
		ctx:           ctx,
		cfg:           cfg,
		pool:          pool,
		probe:         probe,
		metrics:       meter,
		workload:      workload,
		isServerAlive: &atomic.Bool{},
	}

	// Initialize HTTP server with all controllers and middlewares.
	if err = srv.initServer(); err != nil {
		log.Err(err).Msg(InitFailedErrorMessage)
		return nil, errors.New(InitFailedErrorMessage)
	}

	return srv, nil
}

// Start runs the HTTP server in a goroutine and waits for it to finish.
func (s *HttpServer) Start() {
	waitCh := make(chan struct{})

	go func() {
		defer close(waitCh)
		wg := &sync.WaitGroup{}
		defer wg.Wait()
		s.spawnServer(wg)
	}()

	<-waitCh
}

// IsAlive returns true if the server is marked as alive.
func (s *HttpServer) IsAlive() bool {
	return s.isServerAlive.Load()
}

// spawnServer starts the HTTP server in a new goroutine, sets server liveness flags, and blocks until it exits.
func (s *HttpServer) spawnServer(wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer func() {
			s.isServerAlive.Store(false)
			wg.Done()
		}()
		s.isServerAlive.Store(true)
		s.server.ListenAndServe()
	}()
}

// initServer creates the HTTP server instance, sets up controllers and middlewares, and stores the result.
func (s *HttpServer) initServer() error {
	// Compose server with controllers and middlewares.
	if server, err := httpserver.New(s.ctx, s.cfg, s.controllers(), s.middlewares()); err != nil {
		log.Err(err).Msg(InitFailedErrorMessage)
		return errors.New(InitFailedErrorMessage)
	} else {
		s.server = server
	}

	return nil
}

// controllers returns all HTTP controllers for the server (endpoints/handlers).
func (s *HttpServer) controllers() []controller.HttpController {
	return []controller.HttpController{
		liveness.NewController(s.probe),            // healthcheck probe endpoint
		metricscontroller.NewPrometheusMetrics(),   // metrics endpoint
		api.NewStatsController(s.pool),             // pool counters and statistics
		api.NewClearController(s.cfg, s.pool),      // clears the idle set (token protected)
		api.NewResizeController(s.pool),            // runtime capacity changes
		api.NewCleanupController(s.pool),           // manual idle sweep
		api.NewOnOffController(s.workload),         // workload on-off switch
	}
}

// middlewares returns the request middlewares for the server, executed in reverse order.
func (s *HttpServer) middlewares() []middleware.HttpMiddleware {
	return []middleware.HttpMiddleware{
		/** exec 1st. */ middleware.NewRateLimitMiddleware(s.cfg), // sheds load above the configured rps
		/** exec 2nd. */ metricsmiddleware.NewPrometheusMetrics(s.ctx, s.metrics), // request counters and timings
		/** exec 3rd. */ middleware.NewApplicationJsonMiddleware(), // sets the Content-Type: application/json
		/** exec 4th. */ middleware.NewServerNameMiddleware(s.cfg), // sets the Server response header
	}
}
