package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
)

const departuresBody = `{"results": [{
	"serviceJourney": {
		"direction": "Östra Sjukhuset via Centralstationen",
		"directionDetails": {"shortDirection": "Östra Sjukhuset"},
		"line": {"shortName": "6", "backgroundColor": "#fcb813", "foregroundColor": "#000000"}
	},
	"stopPoint": {"platform": "A"},
	"plannedTime": "2026-10-17T10:00:00+02:00",
	"estimatedTime": "2026-10-17T10:03:00+02:00",
	"isCancelled": false
}]}`

// upstreamServer serves both the token endpoint and the departures API.
func upstreamServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("GET /pr/v4/stop-areas/{gid}/departures", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(departuresBody))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// freePort returns a port that was free a moment ago.
func freePort(t *testing.T) uint16 {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return uint16(l.Addr().(*net.TCPAddr).Port)
}

func testConfig(t *testing.T, upstreamURL string) *Config {
	t.Helper()
	t.Setenv("TAVLA_TEST_SECRET", "s3cret")

	cfg := &Config{
		Server:   ServerConfig{Port: freePort(t)},
		Upstream: UpstreamConfig{BaseURL: upstreamURL + "/pr/v4", TokenURL: upstreamURL + "/token"},
		Auth:     AuthConfig{ClientID: "client", EnvKey: "TAVLA_TEST_SECRET"},
	}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	return cfg
}

func TestApp_ServesDepartures(t *testing.T) {
	upstream := upstreamServer(t)
	cfg := testConfig(t, upstream.URL)

	defer leaktest.Check(t)()
	defer func() {
		// Upstream keep-alive connections outlive the app
		upstream.CloseClientConnections()
		http.DefaultTransport.(*http.Transport).CloseIdleConnections()
	}()

	application, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- application.Start(ctx)
	}()

	base := "http://127.0.0.1:" + strconv.Itoa(int(cfg.Server.Port))
	client := &http.Client{Timeout: 2 * time.Second}
	defer client.CloseIdleConnections()

	var resp *http.Response
	for range 50 {
		resp, err = client.Get(base + "/departures.json")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("dashboard never came up: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var got struct {
		StopID     string `json:"stopId"`
		Departures []struct {
			Line      string `json:"line"`
			Direction string `json:"direction"`
			Platform  string `json:"platform"`
			Time      string `json:"time"`
			Planned   string `json:"planned"`
		} `json:"departures"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.StopID != DefaultConfigBoardStopID || len(got.Departures) != 1 {
		t.Fatalf("unexpected response: %s", body)
	}
	d := got.Departures[0]
	if d.Line != "6" || d.Direction != "Östra Sjukhuset" || d.Platform != "A" || d.Time != "10:03" || d.Planned != "10:00" {
		t.Errorf("unexpected departure: %+v", d)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_StartFailsWithoutSecret(t *testing.T) {
	upstream := upstreamServer(t)
	cfg := testConfig(t, upstream.URL)
	cfg.Auth.Storage = SecretStorageTypeFile
	cfg.Auth.File = filepath.Join(t.TempDir(), "missing", "secret")

	application, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := application.Start(context.Background()); err == nil {
		t.Fatal("expected startup error for missing secret")
	}
}

func TestNew_RequiresClientID(t *testing.T) {
	upstream := upstreamServer(t)
	cfg := testConfig(t, upstream.URL)
	cfg.Auth.ClientID = ""

	if _, err := New(cfg); err == nil {
		t.Error("expected error without client id")
	}
}

func TestNewBoard_OneCycle(t *testing.T) {
	upstream := upstreamServer(t)
	cfg := testConfig(t, upstream.URL)

	board, _, err := NewBoard(cfg)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}

	deps, err := board.Departures(context.Background())
	if err != nil {
		t.Fatalf("Departures: %v", err)
	}
	if len(deps) != 1 || deps[0].Line != "6" {
		t.Errorf("unexpected departures: %+v", deps)
	}
}
