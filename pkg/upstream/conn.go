package upstream

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Borislavv/advanced-pool/pkg/config"
	"github.com/Borislavv/advanced-pool/pkg/pool"
	"github.com/valyala/fasthttp"
	"github.com/zeebo/xxh3"
)

var connSeq atomic.Uint64

// scratch buffers shared by all connections, one size class per payload range.
var scratch = pool.NewSizedBytePool()

// Conn is an upstream HTTP client bound to one backend host, shaped to live
// inside a pool.Pool: it is expensive to build, reusable, and restores itself
// to a clean state on Reset. Each Conn carries its own scratch buffer so
// concurrent holders never share memory.
type Conn struct {
	client   *fasthttp.HostClient
	addr     string
	id       uint64
	buf      *[]byte
	lastErr  error
	requests uint64
}

// NewConn dials nothing eagerly; fasthttp establishes TCP connections lazily
// on first use. The fingerprint identifies the connection in logs and stats.
func NewConn(cfg *config.Config) *Conn {
	up := cfg.Pool.Upstream
	c := &Conn{
		addr: up.Addr,
		client: &fasthttp.HostClient{
			Addr:                          up.Addr,
			IsTLS:                         up.Scheme == "https",
			ReadTimeout:                   up.Timeout,
			WriteTimeout:                  up.Timeout,
			MaxIdleConnDuration:           time.Minute,
			DisableHeaderNamesNormalizing: true,
		},
		buf: scratch.Get(4096),
	}
	c.id = xxh3.HashString(fmt.Sprintf("%s#%d", up.Addr, connSeq.Add(1)))
	return c
}

// Fingerprint is a stable identifier of this connection instance.
func (c *Conn) Fingerprint() uint64 { return c.id }

// Fetch performs a GET against the bound host. The returned body aliases the
// connection's scratch buffer and is only valid until Reset or the next Fetch.
func (c *Conn) Fetch(path, query string) (status int, body []byte, err error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(path)
	if query != "" {
		req.URI().SetQueryString(query)
	}
	req.URI().SetHost(c.addr)

	c.requests++
	if err = c.client.Do(req, resp); err != nil {
		c.lastErr = err
		return 0, nil, fmt.Errorf("%w: %s", ErrUpstreamTimeout, err.Error())
	}

	*c.buf = append((*c.buf)[:0], resp.Body()...)
	status = resp.StatusCode()
	if status < 200 || status > 299 {
		c.lastErr = fmt.Errorf("%w: %d", ErrBadStatus, status)
		return status, *c.buf, c.lastErr
	}
	c.lastErr = nil
	return status, *c.buf, nil
}

// Requests reports how many fetches this connection served since creation.
func (c *Conn) Requests() uint64 { return c.requests }

// IsAlive is the pool validator hook: a connection which failed its last
// request is discarded instead of being lent out again.
func (c *Conn) IsAlive() bool { return c.lastErr == nil }

// Reset clears per-loan state before the connection re-enters the idle set.
// The scratch buffer is kept but truncated; idle TCP connections stay warm
// inside the fasthttp client.
func (c *Conn) Reset() {
	*c.buf = (*c.buf)[:0]
	c.lastErr = nil
}

// Close releases the scratch buffer and tears down idle TCP connections.
// Intended for objects leaving the pool permanently.
func (c *Conn) Close() {
	if c.buf != nil {
		scratch.Put(c.buf)
		c.buf = nil
	}
	c.client.CloseIdleConnections()
}
