package departures

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/florianilch/tavla/internal/vasttrafik"
)

// DepartureSource fetches raw departures of a stop area with a given token.
// Implemented by *vasttrafik.Client.
type DepartureSource interface {
	StopAreaDepartures(ctx context.Context, token *oauth2.Token, stopAreaGid string) ([]vasttrafik.Departure, error)
}

// TokenProvider hands out access tokens for one fetch cycle.
// Implemented by *tokensource.TokenSource.
type TokenProvider interface {
	TokenContext(ctx context.Context) (*oauth2.Token, error)
}

// Fetcher calls the departures endpoint and normalizes the result.
type Fetcher struct {
	Source DepartureSource
}

// FetchDepartures fetches and normalizes the departures of stopID.
func (f *Fetcher) FetchDepartures(ctx context.Context, stopID string, token *oauth2.Token) ([]Departure, error) {
	raw, err := f.Source.StopAreaDepartures(ctx, token, stopID)
	if err != nil {
		return nil, err
	}
	return Normalize(raw)
}

// BoardConfig is the fixed setup of a board.
type BoardConfig struct {
	// StopID is the stop area shown by Departures.
	StopID string
}

// Board runs complete refresh cycles: acquire a token, fetch, normalize.
// It keeps no state between cycles and may be used concurrently.
type Board struct {
	cfg     BoardConfig
	tokens  TokenProvider
	fetcher *Fetcher
}

// NewBoard creates a Board.
func NewBoard(cfg BoardConfig, tokens TokenProvider, source DepartureSource) (*Board, error) {
	if cfg.StopID == "" {
		return nil, errors.New("stop id cannot be empty")
	}
	if tokens == nil {
		return nil, errors.New("missing token provider")
	}
	if source == nil {
		return nil, errors.New("missing departure source")
	}

	return &Board{
		cfg:     cfg,
		tokens:  tokens,
		fetcher: &Fetcher{Source: source},
	}, nil
}

// StopID returns the configured stop area.
func (b *Board) StopID() string {
	return b.cfg.StopID
}

// Departures runs one cycle for the configured stop.
func (b *Board) Departures(ctx context.Context) ([]Departure, error) {
	return b.GetDeparturesForStop(ctx, b.cfg.StopID)
}

// GetDeparturesForStop acquires a fresh token and fetches the departures of
// stopID. Errors from either step are returned unmodified.
func (b *Board) GetDeparturesForStop(ctx context.Context, stopID string) ([]Departure, error) {
	start := time.Now()

	token, err := b.tokens.TokenContext(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "token acquisition failed", "stop_area", stopID, "error", err)
		return nil, err
	}

	deps, err := b.fetcher.FetchDepartures(ctx, stopID, token)
	if err != nil {
		slog.ErrorContext(ctx, "departure fetch failed", "stop_area", stopID, "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "departures refreshed",
		"stop_area", stopID, "count", len(deps), "duration", time.Since(start))
	return deps, nil
}
