// Package tokensource acquires Västtrafik API access tokens using the OAuth2
// client-credentials grant.
//
// The token endpoint deviates from what golang.org/x/oauth2 checks on its own:
//   - A 200 response without "access_token" is reported as a
//     vasttrafik.MalformedResponseError instead of an opaque string error
//   - Non-success responses are reported as vasttrafik.AuthenticationError
//     carrying the upstream status and body
//
// # One-shot acquisition
//
// AcquireToken performs a single exchange and caches nothing:
//
//	tok, err := tokensource.AcquireToken(ctx, clientID, clientSecret)
//
// # Token Sources
//
// New returns a TokenSource implementing oauth2.TokenSource. By default every
// call re-authenticates; WithReuse keeps a token until shortly before expiry:
//
//	ts, err := tokensource.New(clientID, clientSecret, tokensource.WithReuse())
//
// # Custom Base Transport
//
// Configure a custom base transport for token requests (e.g., for proxies or tests):
//
//	ts, err := tokensource.New(
//		clientID,
//		clientSecret,
//		tokensource.WithTransport(customTransport),
//	)
package tokensource
