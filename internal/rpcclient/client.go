// Package rpcclient implements the plugin-side RPC client: lazy
// connect, a single persistent connection reused across calls,
// reconnect on any failure, and a hard per-call deadline.
package rpcclient

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/ratelimit"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/rpc"
)

// reconnectRatePerSecond and reconnectBurst bound how often this
// client will attempt to dial a socket that keeps refusing
// connections, so a service outage turns into a steady trickle of
// dial attempts instead of a tight retry loop on every keystroke.
const (
	reconnectRatePerSecond = 5.0
	reconnectBurst         = 1
)

// Config controls connection and per-call timing.
type Config struct {
	SocketPath       string
	ConnectTimeout   time.Duration // default 1s
	DefaultCallTimeout time.Duration // default 15ms
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = time.Second
	}
	if c.DefaultCallTimeout <= 0 {
		c.DefaultCallTimeout = 15 * time.Millisecond
	}
	return c
}

// Client is a lazily-connected, single-connection RPC client. It is
// safe for concurrent use; calls are serialized (callMu) over the one
// connection since JSON-RPC frames here have no built-in
// multiplexing (one request in flight at a time, matching the
// server's single-client contract).
type Client struct {
	cfg Config

	callMu  sync.Mutex // held for a whole Call: one request in flight at a time
	mu      sync.Mutex
	conn    net.Conn
	code    *rpc.Codec
	reconnect *ratelimit.Limiter
}

// New builds a Client. It does not connect until the first Call.
func New(cfg Config) *Client {
	return &Client{cfg: cfg.withDefaults(), reconnect: ratelimit.New(reconnectRatePerSecond, reconnectBurst)}
}

// Call invokes method with params, decoding the result into result (a
// pointer), bounded by min(cfg.DefaultCallTimeout, ctx's own
// deadline). Any failure — connect, timeout, broken pipe, RPC-level
// error — tears down the connection so the next call reconnects from
// scratch. Call itself returns the error; translating that into a
// synthetic fallback SuggestionResponse is the orchestrator's job, via
// local catch-and-convert at that single layer.
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	callCtx, cancel := boundedContext(ctx, c.cfg.DefaultCallTimeout)
	defer cancel()

	codec, err := c.ensureConnected(callCtx)
	if err != nil {
		return err
	}

	if deadline, ok := callCtx.Deadline(); ok {
		_ = c.conn.SetDeadline(deadline)
	}

	req, err := rpc.NewRequest(uuid.NewString(), method, params)
	if err != nil {
		c.teardown()
		return fmt.Errorf("%w: %v", rpc.ErrInvalidRequest, err)
	}

	if err := codec.WriteRequest(req); err != nil {
		c.teardown()
		return err
	}

	resp, err := codec.ReadResponse()
	if err != nil {
		c.teardown()
		return err
	}

	if resp.Error != nil {
		c.teardown()
		return resp.Error
	}

	if result != nil {
		if err := resp.Unmarshal(result); err != nil {
			c.teardown()
			return fmt.Errorf("%w: %v", rpc.ErrMalformedFrame, err)
		}
	}
	return nil
}

// boundedContext returns a context whose deadline is the earlier of
// ctx's own deadline (if any) and now+timeout.
func boundedContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (c *Client) ensureConnected(ctx context.Context) (*rpc.Codec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.code != nil {
		return c.code, nil
	}

	if !c.reconnect.Allow() {
		return nil, fmt.Errorf("%w: reconnect throttled", rpc.ErrConnectionUnavailable)
	}

	var d net.Dialer
	connectCtx := ctx
	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > c.cfg.ConnectTimeout {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}

	conn, err := d.DialContext(connectCtx, "unix", c.cfg.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rpc.ErrConnectionUnavailable, err)
	}

	c.conn = conn
	c.code = rpc.NewCodec(conn)
	return c.code, nil
}

// teardown closes and forgets the current connection so the next Call
// reconnects lazily.
func (c *Client) teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = nil
	c.code = nil
}

// Dispose closes the underlying connection, if any. It is idempotent.
func (c *Client) Dispose() {
	c.teardown()
}
