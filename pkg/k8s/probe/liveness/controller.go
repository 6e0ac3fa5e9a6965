package liveness

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

const ProbePath = "/k8s/probe"

// Controller exposes the liveness probe over HTTP for Kubernetes.
type Controller struct {
	probe Prober
}

func NewController(probe Prober) *Controller {
	return &Controller{probe: probe}
}

func (c *Controller) Probe(ctx *fasthttp.RequestCtx) {
	if c.probe.IsAlive() {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString(`{"status":"alive"}`)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
	ctx.SetBodyString(`{"status":"dead"}`)
}

func (c *Controller) AddRoute(r *router.Router) {
	r.GET(ProbePath, c.Probe)
}
