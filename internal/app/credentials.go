package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/florianilch/tavla/internal/departures"
	"github.com/florianilch/tavla/internal/secretstore"
	"github.com/florianilch/tavla/internal/tokensource"
)

// Credentials pairs the configured client id with the secret from a store and
// hands out access tokens. The secret is read once, on first use.
type Credentials struct {
	clientID string
	store    secretstore.Store
	opts     []tokensource.Option

	tokenSource func() (*tokensource.TokenSource, error)
}

// Compile-time check to ensure Credentials can feed a departures.Board
var _ departures.TokenProvider = (*Credentials)(nil)

// NewCredentials creates Credentials. No I/O is performed until the first
// TokenContext or Check call.
func NewCredentials(clientID string, store secretstore.Store, opts ...tokensource.Option) (*Credentials, error) {
	if clientID == "" {
		return nil, fmt.Errorf("missing client id")
	}
	if store == nil {
		return nil, fmt.Errorf("missing secret store")
	}

	c := &Credentials{
		clientID: clientID,
		store:    store,
		opts:     opts,
	}
	c.tokenSource = sync.OnceValues(c.createTokenSource)

	return c, nil
}

func (c *Credentials) createTokenSource() (*tokensource.TokenSource, error) {
	// Result is cached for all callers, a request context must not cancel it
	secret, err := c.store.Read(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret: %w", err)
	}

	return tokensource.New(c.clientID, secret, c.opts...)
}

// Check reads the secret without contacting the token endpoint.
func (c *Credentials) Check() error {
	_, err := c.tokenSource()
	return err
}

// TokenContext returns an access token. Token endpoint errors are returned
// unmodified so callers can match the vasttrafik error kinds.
func (c *Credentials) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	ts, err := c.tokenSource()
	if err != nil {
		return nil, err
	}
	return ts.TokenContext(ctx)
}
