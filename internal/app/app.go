package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/florianilch/tavla/internal/dashboard"
	"github.com/florianilch/tavla/internal/departures"
	"github.com/florianilch/tavla/internal/tokensource"
	"github.com/florianilch/tavla/internal/vasttrafik"
)

// App orchestrates the lifecycle of the dashboard server and related services.
type App struct {
	cfg         *Config
	credentials *Credentials
	board       *departures.Board
	dashboard   *dashboard.Server
}

// New creates a new App instance.
func New(cfg *Config) (*App, error) {
	board, credentials, err := NewBoard(cfg)
	if err != nil {
		return nil, err
	}

	server, err := dashboard.New(board,
		dashboard.WithTitle(cfg.Board.Title),
		dashboard.WithRefresh(cfg.Board.Refresh),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard: %w", err)
	}

	return &App{
		cfg:         cfg,
		credentials: credentials,
		board:       board,
		dashboard:   server,
	}, nil
}

// NewBoard wires credentials and the API client into a departures.Board for
// the configured stop. Used by the server and by one-shot commands.
func NewBoard(cfg *Config) (*departures.Board, *Credentials, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, nil, err
	}

	// I/O deferred to first token request
	credentials, err := newCredentials(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create credentials: %w", err)
	}

	client := vasttrafik.NewClient(
		vasttrafik.WithBaseURL(cfg.Upstream.BaseURL),
		vasttrafik.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
	)

	board, err := departures.NewBoard(departures.BoardConfig{StopID: cfg.Board.StopID}, credentials, client)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create board: %w", err)
	}

	return board, credentials, nil
}

// Addr returns the dashboard's listening address once Start is running.
func (a *App) Addr() string {
	return a.dashboard.Addr()
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	// A missing secret is fatal at startup rather than on the first page load
	if err := a.credentials.Check(); err != nil {
		return fmt.Errorf("credentials unavailable: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	address := a.cfg.Server.Host + ":" + strconv.FormatUint(uint64(a.cfg.Server.Port), 10)
	var shutdownFuncs []func(context.Context) error

	// Startup phase: Start services
	slog.InfoContext(gCtx, "starting dashboard", "address", address, "stop_area", a.board.StopID())
	dashboardErrCh, err := a.dashboard.Start(gCtx, address)
	if err != nil {
		return fmt.Errorf("dashboard startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.dashboard.Shutdown)

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err := <-dashboardErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "dashboard runtime error", "error", err)
				return fmt.Errorf("dashboard: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	slog.InfoContext(gCtx, "application ready", "url", "http://"+a.dashboard.Addr()+"/")

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}

// newCredentials creates Credentials from application configuration.
// No I/O beyond opening the store is performed.
func newCredentials(cfg *Config) (*Credentials, error) {
	store, err := cfg.Auth.NewSecretStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create secret store: %w", err)
	}

	opts := []tokensource.Option{
		tokensource.WithTokenURL(cfg.Upstream.TokenURL),
		tokensource.WithTimeout(cfg.Upstream.Timeout),
	}
	if cfg.Auth.ReuseToken {
		opts = append(opts, tokensource.WithReuse())
	}

	return NewCredentials(cfg.Auth.ClientID, store, opts...)
}
