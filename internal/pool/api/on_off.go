package api

import (
	"encoding/json"
	"sync/atomic"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

// OnOffController provides endpoints to pause and resume the synthetic workload.
type OnOffController struct {
	enabled *atomic.Bool
}

// NewOnOffController creates a new OnOffController instance. The flag is
// shared with the workload runner.
func NewOnOffController(enabled *atomic.Bool) *OnOffController {
	return &OnOffController{enabled: enabled}
}

// onOffStatusResponse is the JSON payload returned by On and Off handlers.
type onOffStatusResponse struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message,omitempty"`
}

// On handles GET /pool/workload/on and resumes the workload, returning JSON.
func (c *OnOffController) On(ctx *fasthttp.RequestCtx) {
	c.enabled.Store(true)
	resp := onOffStatusResponse{Enabled: true, Message: "workload enabled"}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json; charset=utf-8")
	_ = json.NewEncoder(ctx).Encode(resp)
}

// Off handles GET /pool/workload/off and pauses the workload, returning JSON.
func (c *OnOffController) Off(ctx *fasthttp.RequestCtx) {
	c.enabled.Store(false)
	resp := onOffStatusResponse{Enabled: false, Message: "workload disabled"}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json; charset=utf-8")
	_ = json.NewEncoder(ctx).Encode(resp)
}

// AddRoute attaches the on/off routes to the given router.
func (c *OnOffController) AddRoute(r *router.Router) {
	r.GET("/pool/workload/on", c.On)
	r.GET("/pool/workload/off", c.Off)
}
