package middleware

import (
	"github.com/Borislavv/advanced-pool/pkg/config"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var tooManyRequestsBytes = []byte(`{"error":"too many requests"}`)

// RateLimitMiddleware sheds load above the configured request rate with 429
// before the request reaches any controller.
type RateLimitMiddleware struct {
	limiter *rate.Limiter
	enabled bool
}

func NewRateLimitMiddleware(cfg *config.Config) *RateLimitMiddleware {
	rl := cfg.Pool.RateLimit
	if !rl.Enabled || rl.RPS <= 0 {
		return &RateLimitMiddleware{}
	}
	burst := rl.Burst
	if burst <= 0 {
		burst = int(rl.RPS)
	}
	return &RateLimitMiddleware{
		limiter: rate.NewLimiter(rate.Limit(rl.RPS), burst),
		enabled: true,
	}
}

func (m *RateLimitMiddleware) Middleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	if !m.enabled {
		return next
	}
	return func(ctx *fasthttp.RequestCtx) {
		if !m.limiter.Allow() {
			ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
			ctx.SetBody(tooManyRequestsBytes)
			return
		}
		next(ctx)
	}
}
