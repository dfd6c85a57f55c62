package tokensource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/florianilch/tavla/internal/vasttrafik"
)

// Endpoint defines the OAuth2 token endpoint for Västtrafik APIs.
// Client credentials are sent in the form body, not via basic auth.
var Endpoint = oauth2.Endpoint{
	TokenURL:  vasttrafik.DefaultTokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}

// maxTokenResponse mirrors the limit oauth2 applies when reading token responses.
const maxTokenResponse = 1 << 20

// Option configures a TokenSource.
type Option func(*config)

// config holds configuration for New.
type config struct {
	baseTransport http.RoundTripper
	tokenURL      string
	timeout       time.Duration
	reuse         bool
}

// WithTransport sets a custom base transport for token requests.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *config) {
		c.baseTransport = transport
	}
}

// WithTokenURL overrides the token endpoint URL.
func WithTokenURL(tokenURL string) Option {
	return func(c *config) {
		c.tokenURL = tokenURL
	}
}

// WithTimeout bounds each token request. Defaults to vasttrafik.DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

// WithReuse caches the access token until shortly before its reported expiry.
// Without it every Token call performs a fresh exchange.
func WithReuse() Option {
	return func(c *config) {
		c.reuse = true
	}
}

// TokenSource exchanges client credentials for access tokens.
type TokenSource struct {
	conf       *clientcredentials.Config
	httpClient *http.Client

	// reused is set when WithReuse is given.
	reused oauth2.TokenSource
}

// Compile-time check to ensure TokenSource implements oauth2.TokenSource
var _ oauth2.TokenSource = (*TokenSource)(nil)

// New creates a TokenSource for the given client credentials.
// No I/O is performed until the first Token call.
func New(clientID, clientSecret string, opts ...Option) (*TokenSource, error) {
	if clientID == "" {
		return nil, errors.New("client id cannot be empty")
	}
	if clientSecret == "" {
		return nil, errors.New("client secret cannot be empty")
	}

	cfg := &config{
		baseTransport: http.DefaultTransport,
		tokenURL:      Endpoint.TokenURL,
		timeout:       vasttrafik.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := &http.Client{
		Timeout: cfg.timeout,
		Transport: &tokenResponseTransport{
			base: cfg.baseTransport,
		},
	}

	ts := &TokenSource{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     cfg.tokenURL,
			AuthStyle:    Endpoint.AuthStyle,
		},
		httpClient: httpClient,
	}

	if cfg.reuse {
		// The reusing source outlives any request, so it gets a background
		// context carrying the HTTP client per oauth2's documented API.
		oauthCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		ts.reused = ts.conf.TokenSource(oauthCtx)
	}

	return ts, nil
}

// AcquireToken performs a single client-credentials exchange.
func AcquireToken(ctx context.Context, clientID, clientSecret string, opts ...Option) (*oauth2.Token, error) {
	ts, err := New(clientID, clientSecret, opts...)
	if err != nil {
		return nil, err
	}
	return ts.TokenContext(ctx)
}

// Token returns an access token. Implements oauth2.TokenSource.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	return ts.TokenContext(context.Background())
}

// TokenContext returns an access token, honouring ctx for the exchange.
// A reused token ignores ctx when it is still valid.
func (ts *TokenSource) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	var (
		tok *oauth2.Token
		err error
	)
	if ts.reused != nil {
		tok, err = ts.reused.Token()
	} else {
		tok, err = ts.conf.Token(context.WithValue(ctx, oauth2.HTTPClient, ts.httpClient))
	}
	if err != nil {
		return nil, classify(err)
	}

	slog.DebugContext(ctx, "access token ready", "expiry", tok.Expiry, "reused", ts.reused != nil)
	return tok, nil
}

// classify maps oauth2 failures onto the vasttrafik error kinds.
func classify(err error) error {
	var malformed *vasttrafik.MalformedResponseError
	if errors.As(err, &malformed) {
		return malformed
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return &vasttrafik.AuthenticationError{
			StatusCode: status,
			Body:       string(bytes.TrimSpace(retrieveErr.Body)),
		}
	}

	return fmt.Errorf("acquiring token: %w", err)
}

// tokenResponseTransport inspects successful token responses and rejects those
// without an access token before oauth2 turns them into an untyped error.
// The oauth2 package guarantees this transport only receives token endpoint requests.
type tokenResponseTransport struct {
	base http.RoundTripper
}

// Compile-time check that tokenResponseTransport implements http.RoundTripper.
var _ http.RoundTripper = (*tokenResponseTransport)(nil)

// RoundTrip forwards the request and validates 2xx response bodies.
func (t *tokenResponseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Failures are left to oauth2, which reports them as RetrieveError
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}

	// Body is consumed entirely; the response gets a fresh reader
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponse))
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if err := checkAccessToken(resp.Header.Get("Content-Type"), body); err != nil {
		return nil, err
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}

// checkAccessToken reports whether body carries a non-empty access_token,
// accepting the same encodings oauth2 does.
func checkAccessToken(contentType string, body []byte) error {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/x-www-form-urlencoded", "text/plain":
		vals, err := url.ParseQuery(string(body))
		if err != nil {
			return &vasttrafik.MalformedResponseError{Field: "body", Err: err}
		}
		if vals.Get("access_token") == "" {
			return &vasttrafik.MalformedResponseError{Field: "access_token"}
		}
	default:
		var tj struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal(body, &tj); err != nil {
			return &vasttrafik.MalformedResponseError{Field: "body", Err: err}
		}
		if tj.AccessToken == "" {
			return &vasttrafik.MalformedResponseError{Field: "access_token"}
		}
	}
	return nil
}
