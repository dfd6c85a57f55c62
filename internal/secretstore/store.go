package secretstore

import (
	"context"
	"errors"
)

// ErrReadOnly is returned by Write on backends that cannot be written.
var ErrReadOnly = errors.New("secret store is read-only")

// Store reads and writes a client secret.
type Store interface {
	// Read returns the stored secret. Returns error if it is missing or empty.
	Read(ctx context.Context) (string, error)

	// Write persists the secret. Returns ErrReadOnly for read-only backends.
	Write(ctx context.Context, secret string) error
}
