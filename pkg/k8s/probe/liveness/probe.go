package liveness

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Service is anything the probe can health-check.
type Service interface {
	IsAlive(ctx context.Context) bool
}

// Prober aggregates liveness of all watched services for Kubernetes probes.
type Prober interface {
	Watch(svc Service)
	IsAlive() bool
}

// Probe polls every watched service on a fixed interval and keeps the
// combined result in an atomic flag, so IsAlive never blocks a handler.
type Probe struct {
	mu       sync.Mutex
	services []Service
	alive    atomic.Bool
	timeout  time.Duration
}

func NewProbe(timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = time.Second
	}
	p := &Probe{timeout: timeout}
	go p.poll()
	return p
}

// Watch registers svc for periodic health checks. Does not block.
func (p *Probe) Watch(svc Service) {
	p.mu.Lock()
	p.services = append(p.services, svc)
	p.mu.Unlock()
}

// IsAlive reports the result of the most recent polling round.
func (p *Probe) IsAlive() bool {
	return p.alive.Load()
}

func (p *Probe) poll() {
	t := time.NewTicker(p.timeout / 2)
	defer t.Stop()
	for range t.C {
		p.alive.Store(p.check())
	}
}

func (p *Probe) check() bool {
	p.mu.Lock()
	services := make([]Service, len(p.services))
	copy(services, p.services)
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	for _, svc := range services {
		if !svc.IsAlive(ctx) {
			return false
		}
	}
	return len(services) > 0
}
