// Package server exposes sorting sessions over websockets, one session per
// connection, next to health, catalogue and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sortviz/pkg/observability"
	"github.com/Sumatoshi-tech/sortviz/pkg/session"
	"github.com/Sumatoshi-tech/sortviz/pkg/version"
)

const (
	tracerName      = "github.com/Sumatoshi-tech/sortviz/pkg/server"
	bufferSize      = 4 * 1024
	writeWait       = 10 * time.Second
	maxMessageBytes = 4 * 1024
)

// Options configures a Server.
type Options struct {
	// Session holds the defaults of every new connection's session.
	Session session.Options

	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler

	Logger *slog.Logger
	Tracer trace.Tracer
	RED    *observability.REDMetrics

	// CheckOrigin overrides the upgrader's same-origin check.
	CheckOrigin func(r *http.Request) bool
}

// Timeouts bounds the HTTP server's reads, writes and idle connections.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// Server serves the websocket protocol.
type Server struct {
	opts      Options
	logger    *slog.Logger
	tracer    trace.Tracer
	validator *controlValidator
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type apiHandlerFunc func(rw http.ResponseWriter, r *http.Request) error

// New returns a Server. The control schema is compiled here.
func New(opts Options) (*Server, error) {
	validator, err := newControlValidator()
	if err != nil {
		return nil, err
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	logger := observability.LoggerOrDefault(opts.Logger)
	opts.Session.Logger = logger
	opts.Session.Tracer = tracer

	return &Server{
		opts:      opts,
		logger:    logger,
		tracer:    tracer,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  bufferSize,
			WriteBufferSize: bufferSize,
			CheckOrigin:     opts.CheckOrigin,
		},
		clients: make(map[*client]struct{}),
	}, nil
}

// Handler returns the routed, traced HTTP handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.api("healthz", s.handleHealth)).Methods(http.MethodGet)
	router.HandleFunc("/api/algorithms", s.api("algorithms", s.handleAlgorithms)).Methods(http.MethodGet)

	if s.opts.MetricsHandler != nil {
		router.Handle("/metrics", s.opts.MetricsHandler).Methods(http.MethodGet)
	}

	return observability.HTTPMiddleware(s.tracer, s.opts.RED, router)
}

// ListenAndServe serves on addr until ctx is done, then shuts down,
// stopping every running sort and closing open sockets.
func (s *Server) ListenAndServe(ctx context.Context, addr string, timeouts Timeouts) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	return s.Serve(ctx, listener, timeouts)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener, timeouts Timeouts) error {
	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  timeouts.Read,
		WriteTimeout: timeouts.Write,
		IdleTimeout:  timeouts.Idle,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	httpServer.RegisterOnShutdown(s.closeClients)

	errCh := make(chan error, 1)

	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	s.logger.InfoContext(ctx, "server listening", "addr", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeWait)
	defer cancel()

	shutdownErr := httpServer.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}

	s.logger.InfoContext(ctx, "server stopped")

	return nil
}

// api wraps a handler with error logging and RED metrics.
func (s *Server) api(op string, handler apiHandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()

		err := handler(rw, r)

		status := observability.StatusOK
		if err != nil {
			status = observability.StatusError

			s.logger.ErrorContext(r.Context(), "request failed", "op", op, "error", err)
		}

		if s.opts.RED != nil {
			s.opts.RED.RecordRequest(r.Context(), op, status, time.Since(start))
		}
	}
}

func (s *Server) handleHealth(rw http.ResponseWriter, _ *http.Request) error {
	s.mu.Lock()
	sessions := len(s.clients)
	s.mu.Unlock()

	return writeJSON(rw, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  version.Version,
		"sessions": sessions,
	})
}

func (s *Server) handleAlgorithms(rw http.ResponseWriter, _ *http.Request) error {
	return writeJSON(rw, http.StatusOK, algorithmInfos())
}

func (s *Server) handleWebsocket(rw http.ResponseWriter, r *http.Request) {
	sess, err := session.New(s.opts.Session)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "create session", "error", err)
		http.Error(rw, "session unavailable", http.StatusInternalServerError)

		return
	}

	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		s.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)

		return
	}

	c := newClient(conn, sess, s.validator, s.logger)

	if !s.track(c) {
		conn.Close()

		return
	}
	defer s.untrack(c)

	if s.opts.RED != nil {
		defer s.opts.RED.TrackInflight(r.Context(), "ws")()
	}

	c.serve(r.Context())
}

func (s *Server) track(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clients == nil {
		return false
	}

	s.clients[c] = struct{}{}

	return true
}

func (s *Server) untrack(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.clients, c)
}

// closeClients stops every session and closes its socket. New connections
// are refused afterwards.
func (s *Server) closeClients() {
	s.mu.Lock()
	clients := s.clients
	s.clients = nil
	s.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

func writeJSON(rw http.ResponseWriter, status int, value any) error {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	err := json.NewEncoder(rw).Encode(value)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}
