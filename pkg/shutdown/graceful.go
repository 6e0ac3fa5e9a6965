package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrGracefulTimeout = errors.New("graceful shutdown timed out, units still running")

// Gracefuller is the registration surface handed to long-running units.
// Each unit calls Done once it has fully stopped.
type Gracefuller interface {
	Add(delta int)
	Done()
}

// Graceful coordinates application shutdown: it listens for OS signals or
// context cancellation, cancels the root context and awaits all registered
// units up to the configured timeout.
type Graceful struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	timeout time.Duration
}

func NewGraceful(ctx context.Context, cancel context.CancelFunc) *Graceful {
	return &Graceful{ctx: ctx, cancel: cancel, timeout: time.Minute}
}

// SetGracefulTimeout bounds how long ListenCancelAndAwait waits for
// registered units after cancellation.
func (g *Graceful) SetGracefulTimeout(timeout time.Duration) {
	g.timeout = timeout
}

func (g *Graceful) Add(delta int) { g.wg.Add(delta) }
func (g *Graceful) Done()         { g.wg.Done() }

// ListenCancelAndAwait blocks until the context is canceled or an OS signal
// (SIGINT, SIGTERM) arrives, then cancels the root context and waits for all
// registered units. Returns ErrGracefulTimeout when they do not finish in time.
func (g *Graceful) ListenCancelAndAwait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-g.ctx.Done():
	case sig := <-sigCh:
		log.Info().Msgf("[shutdown] received signal: %v", sig)
	}
	g.cancel()

	waitCh := make(chan struct{})
	go func() {
		defer close(waitCh)
		g.wg.Wait()
	}()

	select {
	case <-waitCh:
		return nil
	case <-time.After(g.timeout):
		return ErrGracefulTimeout
	}
}
