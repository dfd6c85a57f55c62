package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/florianilch/tavla/internal/departures"
)

// Board is the source of departures shown on the dashboard.
// Implemented by *departures.Board.
type Board interface {
	StopID() string
	Departures(ctx context.Context) ([]departures.Departure, error)
}

// Default presentation values.
const (
	DefaultTitle   = "Avgångar"
	DefaultRefresh = 30 * time.Second
)

// Option configures a Server.
type Option func(*config)

type config struct {
	title   string
	refresh time.Duration
}

// WithTitle sets the page heading.
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithRefresh sets the page reload and event stream interval.
func WithRefresh(refresh time.Duration) Option {
	return func(c *config) {
		c.refresh = refresh
	}
}

// Server renders the departure board over HTTP.
type Server struct {
	mux    *http.ServeMux
	server *http.Server
	addr   string

	// closing ends open event streams so graceful shutdown does not wait on them
	closing   chan struct{}
	closeOnce sync.Once

	board   Board
	page    *template.Template
	title   string
	refresh time.Duration
}

// Compile-time check that Server implements http.Handler
var _ http.Handler = (*Server)(nil)

// New creates a dashboard server for board.
func New(board Board, opts ...Option) (*Server, error) {
	if board == nil {
		return nil, errors.New("missing board")
	}

	cfg := &config{
		title:   DefaultTitle,
		refresh: DefaultRefresh,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.refresh < time.Second {
		return nil, fmt.Errorf("refresh interval too short: %s", cfg.refresh)
	}

	page, err := parsePage()
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	s := &Server{
		board:   board,
		page:    page,
		title:   cfg.title,
		refresh: cfg.refresh,
		closing: make(chan struct{}),
	}

	logger := slog.Default()
	middlewares := []func(http.Handler) http.Handler{
		TraceContext,
		Logging(logger),
		Recovery,
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", applyMiddlewares(http.HandlerFunc(s.handleIndex), middlewares...))
	mux.Handle("GET /departures.json", applyMiddlewares(http.HandlerFunc(s.handleDepartures), middlewares...))
	mux.Handle("GET /events", applyMiddlewares(http.HandlerFunc(s.handleEvents), middlewares...))
	mux.HandleFunc("GET /healthz", handleHealth)
	s.mux = mux

	return s, nil
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start starts the HTTP server in the background and returns immediately.
// Returns a channel for runtime errors and a startup error if any.
//
// Startup errors (port in use, permission denied) are returned immediately.
// Runtime errors (network failures during operation) are sent to the error channel.
//
// The caller is responsible for calling Shutdown() to stop the server.
func (s *Server) Start(ctx context.Context, address string) (<-chan error, error) {
	// Create listener synchronously to catch port-in-use errors immediately
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	s.addr = listener.Addr().String()

	s.server = &http.Server{
		Handler:      s,
		ReadTimeout:  10 * time.Second, // Inbound: requests carry no body
		WriteTimeout: 15 * time.Minute, // Inbound: bounds event streams, browsers reconnect
		IdleTimeout:  90 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)

	go func() {
		err := s.server.Serve(listener)
		// Only report error if not from graceful shutdown
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh, nil
}

// Addr returns the listening address once Start succeeded.
func (s *Server) Addr() string {
	return s.addr
}

// Shutdown performs graceful shutdown of the HTTP server.
// Returns error if shutdown fails or times out.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.closing) })

	if s.server == nil {
		return nil
	}

	if err := s.server.Shutdown(ctx); err != nil {
		// Graceful shutdown failed - force close
		_ = s.server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}
