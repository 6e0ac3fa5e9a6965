package api

import (
	"encoding/json"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog/log"
	gstrconv "github.com/savsgio/gotils/strconv"
	"github.com/valyala/fasthttp"
)

type resizeResponse struct {
	Capacity  int    `json:"capacity,omitempty"`
	Available int    `json:"available,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ResizeController changes the pool capacity at runtime.
type ResizeController struct {
	pool *ConnPool
}

func NewResizeController(p *ConnPool) *ResizeController {
	return &ResizeController{pool: p}
}

// Resize handles GET /pool/resize?capacity=N.
func (c *ResizeController) Resize(ctx *fasthttp.RequestCtx) {
	raw := ctx.QueryArgs().Peek("capacity")
	capacity, err := strconv.Atoi(gstrconv.B2S(raw))
	if err != nil || capacity <= 0 {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		_ = json.NewEncoder(ctx).Encode(resizeResponse{Error: "capacity must be a positive integer"})
		return
	}

	if err = c.pool.Resize(capacity); err != nil {
		log.Warn().Err(err).Msgf("[resize-controller] resize to %d rejected", capacity)
		ctx.SetStatusCode(fasthttp.StatusConflict)
		_ = json.NewEncoder(ctx).Encode(resizeResponse{Error: err.Error()})
		return
	}

	log.Info().Msgf("[resize-controller] pool resized to %d", capacity)
	ctx.SetStatusCode(fasthttp.StatusOK)
	_ = json.NewEncoder(ctx).Encode(resizeResponse{
		Capacity:  c.pool.Capacity(),
		Available: c.pool.Available(),
	})
}

func (c *ResizeController) AddRoute(r *router.Router) {
	r.GET("/pool/resize", c.Resize)
}
