package vasttrafik

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the Planera Resa v4 API root.
	DefaultBaseURL = "https://ext-api.vasttrafik.se/pr/v4"
	// DefaultTokenURL is the OAuth2 token endpoint shared by all Västtrafik APIs.
	DefaultTokenURL = "https://ext-api.vasttrafik.se/token"

	// DefaultTimeout bounds a single upstream request.
	DefaultTimeout = 10 * time.Second
)

// Fixed query policy of the departures request.
const (
	TimeSpanInMinutes                = 60
	MaxDeparturesPerLineAndDirection = 2
	Limit                            = 10
	Offset                           = 0
	IncludeOccupancy                 = false
)

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 4 << 10

const userAgent = "tavla/1.0 (+https://github.com/florianilch/tavla)"

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API root, e.g. for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the HTTP client used for API requests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client calls the departures endpoint. It is safe for concurrent use and
// holds no per-request state.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client with a bounded default HTTP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StopAreaDepartures fetches the upcoming departures of a stop area using the
// fixed query policy. Records are returned in upstream order, unfiltered.
func (c *Client) StopAreaDepartures(ctx context.Context, token *oauth2.Token, stopAreaGid string) ([]Departure, error) {
	if token == nil || token.AccessToken == "" {
		return nil, errors.New("vasttrafik: missing access token")
	}

	reqURL, err := c.departuresURL(stopAreaGid)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating departures request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	token.SetAuthHeader(req)

	slog.DebugContext(ctx, "fetching departures", "stop_area", stopAreaGid, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching departures: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.WarnContext(ctx, "departures request rejected",
			"stop_area", stopAreaGid, "request_id", requestID, "status", resp.StatusCode)
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var decoded DeparturesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &MalformedResponseError{Field: "body", Err: err}
	}
	if decoded.Results == nil {
		return nil, &MalformedResponseError{Field: "results"}
	}

	slog.DebugContext(ctx, "fetched departures",
		"stop_area", stopAreaGid, "request_id", requestID, "count", len(*decoded.Results))

	return *decoded.Results, nil
}

// departuresURL builds the request URL the way a generated OpenAPI client would.
func (c *Client) departuresURL(stopAreaGid string) (string, error) {
	if stopAreaGid == "" {
		return "", errors.New("vasttrafik: stop area gid cannot be empty")
	}

	pathParam, err := runtime.StyleParamWithLocation("simple", false, "stopAreaGid", runtime.ParamLocationPath, stopAreaGid)
	if err != nil {
		return "", fmt.Errorf("styling path parameter: %w", err)
	}

	u, err := url.Parse(c.baseURL + "/stop-areas/" + pathParam + "/departures")
	if err != nil {
		return "", fmt.Errorf("invalid departures URL: %w", err)
	}

	params := []struct {
		name  string
		value any
	}{
		{"timeSpanInMinutes", TimeSpanInMinutes},
		{"maxDeparturesPerLineAndDirection", MaxDeparturesPerLineAndDirection},
		{"limit", Limit},
		{"offset", Offset},
		{"includeOccupancy", IncludeOccupancy},
	}

	query := u.Query()
	for _, p := range params {
		frag, err := runtime.StyleParamWithLocation("form", true, p.name, runtime.ParamLocationQuery, p.value)
		if err != nil {
			return "", fmt.Errorf("styling query parameter %s: %w", p.name, err)
		}
		parsed, err := url.ParseQuery(frag)
		if err != nil {
			return "", fmt.Errorf("parsing query parameter %s: %w", p.name, err)
		}
		for k, vs := range parsed {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}
