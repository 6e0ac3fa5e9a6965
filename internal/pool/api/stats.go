package api

import (
	"encoding/json"

	"github.com/Borislavv/advanced-pool/pkg/pool"
	"github.com/Borislavv/advanced-pool/pkg/upstream"
	"github.com/fasthttp/router"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

// ConnPool is the concrete pool the daemon manages.
type ConnPool = pool.Pool[*upstream.Conn]

type statsResponse struct {
	Capacity  int        `json:"capacity"`
	Available int        `json:"available"`
	InUse     int        `json:"inUse"`
	Size      int        `json:"size"`
	Stats     pool.Stats `json:"stats"`
}

// StatsController exposes pool counters and statistics as JSON.
type StatsController struct {
	pool *ConnPool
}

func NewStatsController(p *ConnPool) *StatsController {
	return &StatsController{pool: p}
}

// Stats handles GET /pool/stats.
func (c *StatsController) Stats(ctx *fasthttp.RequestCtx) {
	resp := statsResponse{
		Capacity:  c.pool.Capacity(),
		Available: c.pool.Available(),
		InUse:     c.pool.InUseCount(),
		Size:      c.pool.Size(),
		Stats:     c.pool.Stats(),
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(resp); err != nil {
		log.Err(err).Msg("[stats-controller] failed to encode response")
	}
}

// ResetStats handles GET /pool/stats/reset.
func (c *StatsController) ResetStats(ctx *fasthttp.RequestCtx) {
	c.pool.ResetStats()
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString(`{"reset":true}`)
}

func (c *StatsController) AddRoute(r *router.Router) {
	r.GET("/pool/stats", c.Stats)
	r.GET("/pool/stats/reset", c.ResetStats)
}
