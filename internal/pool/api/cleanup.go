package api

import (
	"encoding/json"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

type cleanupResponse struct {
	Removed   int `json:"removed"`
	Available int `json:"available"`
	Size      int `json:"size"`
}

// CleanupController triggers an immediate idle sweep.
type CleanupController struct {
	pool *ConnPool
}

func NewCleanupController(p *ConnPool) *CleanupController {
	return &CleanupController{pool: p}
}

// Cleanup handles GET /pool/cleanup. With ?force=1 the sweep ignores the
// configured interval gate.
func (c *CleanupController) Cleanup(ctx *fasthttp.RequestCtx) {
	force := len(ctx.QueryArgs().Peek("force")) > 0
	removed := c.pool.RunCleanup(force)
	if removed > 0 {
		log.Info().Msgf("[cleanup-controller] reaped %d idle objects", removed)
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json")
	_ = json.NewEncoder(ctx).Encode(cleanupResponse{
		Removed:   removed,
		Available: c.pool.Available(),
		Size:      c.pool.Size(),
	})
}

func (c *CleanupController) AddRoute(r *router.Router) {
	r.GET("/pool/cleanup", c.Cleanup)
}
