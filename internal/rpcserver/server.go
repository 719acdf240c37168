// Package rpcserver implements the single-client accept loop: Idle →
// Listening → Connected → Serving → Disconnected → Idle, dispatching
// decoded JSON-RPC requests to a method registry backed by the
// service facade.
package rpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/metrics"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/rpc"
)

// HandlerFunc answers one decoded request's params, returning a result
// to be marshalled into the Response, or an error.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// backoff is the pause applied after an unexpected accept/serve error
// before the loop tries again, avoiding a hot spin.
const backoff = time.Second

// Server owns the listening socket and the single in-flight
// connection. Only one client is served at a time; a second
// connection attempt waits until the first disconnects. The server
// does not multiplex.
type Server struct {
	socketPath string
	logger     *zap.Logger
	metrics    *metrics.Recorder

	mu       sync.RWMutex
	handlers map[string]HandlerFunc

	listener net.Listener
	stop     chan struct{}
	done     chan struct{}
}

// New builds a Server bound to socketPath (not yet listening — call
// Serve to start the accept loop).
func New(socketPath string, logger *zap.Logger, rec *metrics.Recorder) *Server {
	return &Server{
		socketPath: socketPath,
		logger:     logger,
		metrics:    rec,
		handlers:   make(map[string]HandlerFunc),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Handle registers fn as the handler for the given wire method name.
// Call before Serve; registration is not safe to change concurrently
// with request dispatch.
func (s *Server) Handle(method string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = fn
}

// Serve opens the endpoint and runs the accept loop until Close is
// called or ctx is done. It owns the Idle→Listening transition and
// the Disconnected→Idle reopen.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rpcserver: removing stale socket: %w", err)
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("rpcserver: listen: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("rpcserver: chmod socket: %w", err)
	}

	s.listener = listener
	s.logger.Info("rpc server listening", zap.String("socket", s.socketPath))
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return s.shutdown()
		case <-s.stop:
			return s.shutdown()
		default:
		}

		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("accept failed, backing off", zap.Error(err))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return s.shutdown()
			case <-s.stop:
				return s.shutdown()
			}
			continue
		}

		s.serveOne(ctx, conn) // single client at a time, by construction
	}
}

func (s *Server) shutdown() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Close stops the accept loop and waits for it to exit.
func (s *Server) Close() error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	<-s.done
	return nil
}

// serveOne reads frames from one connection until the peer
// disconnects, a malformed frame tears it down, or Close/ctx
// cancellation closes the connection, then returns, letting the outer
// loop go back to Listening (Serving→Disconnected→Idle).
func (s *Server) serveOne(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
		case <-s.stop:
		case <-finished:
			return
		}
		_ = conn.Close()
	}()

	codec := rpc.NewCodec(conn)
	connID := uuid.NewString()
	log := s.logger.With(zap.String("conn_id", connID))
	log.Info("client connected")

	for {
		req, err := codec.ReadRequest()
		if err != nil {
			if errors.Is(err, rpc.ErrPeerDisconnected) {
				log.Info("client disconnected")
			} else {
				log.Warn("frame error, closing connection", zap.Error(err))
			}
			return
		}

		resp := s.dispatch(ctx, req)
		if err := codec.WriteResponse(resp); err != nil {
			log.Warn("failed to write response, closing connection", zap.Error(err))
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req rpc.Request) rpc.Response {
	start := time.Now()

	s.mu.RLock()
	handler, ok := s.handlers[req.Method]
	s.mu.RUnlock()

	if !ok {
		s.metrics.RecordRPC(req.Method, rpc.CodeInvalidRequest, time.Since(start))
		return rpc.NewErrorResponse(req.ID, rpc.CodeInvalidRequest, "unknown method: "+req.Method)
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		code := errCode(err)
		s.metrics.RecordRPC(req.Method, code, time.Since(start))
		return rpc.NewErrorResponse(req.ID, code, err.Error())
	}

	resp, err := rpc.NewResultResponse(req.ID, result)
	if err != nil {
		s.metrics.RecordRPC(req.Method, rpc.CodeInternalCacheError, time.Since(start))
		return rpc.NewErrorResponse(req.ID, rpc.CodeInternalCacheError, err.Error())
	}

	s.metrics.RecordRPC(req.Method, "OK", time.Since(start))
	return resp
}

func errCode(err error) string {
	switch {
	case errors.Is(err, rpc.ErrInvalidRequest):
		return rpc.CodeInvalidRequest
	case errors.Is(err, rpc.ErrInternalCacheError):
		return rpc.CodeInternalCacheError
	default:
		return rpc.CodeInternalCacheError
	}
}
