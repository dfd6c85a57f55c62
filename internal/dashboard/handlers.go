package dashboard

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v3"

	"github.com/florianilch/tavla/internal/departures"
	"github.com/florianilch/tavla/internal/vasttrafik"
)

// DeparturesResponse is the body of /departures.json and of each
// "departures" event on /events.
type DeparturesResponse struct {
	StopID     string                 `json:"stopId"`
	UpdatedAt  time.Time              `json:"updatedAt"`
	Departures []departures.Departure `json:"departures"`
}

// SSE event names.
const (
	eventDepartures = "departures"
	eventError      = "error"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httplog.SetAttrs(ctx, slog.String("stop_area", s.board.StopID()))

	data := pageData{
		Title:          s.title,
		RefreshSeconds: int(s.refresh / time.Second),
	}

	status := http.StatusOK
	deps, err := s.board.Departures(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "departures unavailable", "error", err)
		data.Error = userMessage(err)
		status = http.StatusBadGateway
	} else {
		data.Rows = rows(deps)
	}

	// Render fully before writing so template errors still yield a clean 500
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		slog.ErrorContext(ctx, "failed to render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.DebugContext(ctx, "client went away while writing page", "error", err)
	}
}

func (s *Server) handleDepartures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httplog.SetAttrs(ctx, slog.String("stop_area", s.board.StopID()))

	resp, err := s.snapshot(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "departures unavailable", "error", err)
		writeJSONError(ctx, w, userMessage(err), http.StatusBadGateway)
		return
	}

	writeJSON(ctx, w, resp, http.StatusOK)
}

// handleEvents streams one "departures" (or "error") event per refresh interval
// until the client disconnects or the server shuts down.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httplog.SetAttrs(ctx, slog.String("stop_area", s.board.StopID()))

	sse, err := NewSSEWriter(w)
	if err != nil {
		slog.ErrorContext(ctx, "SSE not supported", "error", err)
		writeJSONError(ctx, w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)

	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	for {
		if err := s.pushSnapshot(ctx, sse); err != nil {
			slog.DebugContext(ctx, "event stream closed", "error", err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-s.closing:
			return
		case <-ticker.C:
		}
	}
}

// pushSnapshot writes one refresh cycle to the stream. Only write failures are
// returned; a failed cycle becomes an error event.
func (s *Server) pushSnapshot(ctx context.Context, sse *SSEWriter) error {
	resp, err := s.snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.ErrorContext(ctx, "departures unavailable", "error", err)
		return sse.WriteEvent(eventError, ErrorResponse{Error: userMessage(err)})
	}
	return sse.WriteEvent(eventDepartures, resp)
}

func (s *Server) snapshot(ctx context.Context) (DeparturesResponse, error) {
	deps, err := s.board.Departures(ctx)
	if err != nil {
		return DeparturesResponse{}, err
	}
	if deps == nil {
		deps = []departures.Departure{}
	}
	return DeparturesResponse{
		StopID:     s.board.StopID(),
		UpdatedAt:  time.Now().UTC(),
		Departures: deps,
	}, nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// userMessage turns a refresh failure into a message fit for the board.
// Details stay in the logs.
func userMessage(err error) string {
	var (
		authErr      *vasttrafik.AuthenticationError
		fetchErr     *vasttrafik.FetchError
		malformedErr *vasttrafik.MalformedResponseError
	)
	switch {
	case errors.As(err, &authErr):
		return "Inloggningen mot Västtrafik misslyckades"
	case errors.As(err, &fetchErr):
		return "Västtrafik svarar inte just nu"
	case errors.As(err, &malformedErr):
		return "Oväntat svar från Västtrafik"
	default:
		return "Avgångar kunde inte hämtas"
	}
}
