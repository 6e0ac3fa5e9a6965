package controller

import (
	"github.com/fasthttp/router"
)

// HttpController attaches one or more routes to the server router.
type HttpController interface {
	AddRoute(r *router.Router)
}
