package vasttrafik

import (
	"fmt"
	"net/http"
)

// AuthenticationError is returned when the token endpoint answers with a
// non-success status.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("vasttrafik: token request failed: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// FetchError is returned when the departures endpoint answers with a
// non-success status.
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("vasttrafik: departures request failed: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// MalformedResponseError reports a successful HTTP response that lacks an
// expected field or carries a value that cannot be interpreted.
type MalformedResponseError struct {
	// Field names the JSON field that was missing or invalid.
	Field string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vasttrafik: malformed response field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("vasttrafik: malformed response: missing field %q", e.Field)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
