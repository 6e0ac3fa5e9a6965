package controller

import (
	"github.com/VictoriaMetrics/metrics"
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

const MetricsPath = "/metrics"

// PrometheusMetrics serves the scrape endpoint for all registered metrics.
type PrometheusMetrics struct{}

func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{}
}

func (c *PrometheusMetrics) Metrics(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain; charset=utf-8")
	metrics.WritePrometheus(ctx, true)
}

func (c *PrometheusMetrics) AddRoute(r *router.Router) {
	r.GET(MetricsPath, c.Metrics)
}
