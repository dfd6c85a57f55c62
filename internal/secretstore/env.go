package secretstore

import (
	"context"
	"fmt"
	"os"
)

// DefaultEnvKey is the conventional variable for the client secret.
const DefaultEnvKey = "VT_SECRET"

// EnvStore reads the secret from an environment variable.
type EnvStore struct {
	envKey string
	lookup func(string) (string, bool)
}

// Compile-time check to ensure EnvStore implements Store
var _ Store = (*EnvStore)(nil)

// NewEnvStore creates an EnvStore for the given variable.
// Returns error if the name is empty or the variable is not set.
func NewEnvStore(envKey string) (*EnvStore, error) {
	return newEnvStore(envKey, os.LookupEnv)
}

func newEnvStore(envKey string, lookup func(string) (string, bool)) (*EnvStore, error) {
	if envKey == "" {
		return nil, fmt.Errorf("environment key cannot be empty")
	}
	if _, exists := lookup(envKey); !exists {
		return nil, fmt.Errorf("environment variable %s not set", envKey)
	}
	return &EnvStore{envKey: envKey, lookup: lookup}, nil
}

// Read returns the value of the variable. Returns error if it is empty.
func (e *EnvStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	secret, _ := e.lookup(e.envKey)
	if secret == "" {
		return "", fmt.Errorf("environment variable %s is empty", e.envKey)
	}
	return secret, nil
}

// Write always fails; the environment is not a writable backend.
func (e *EnvStore) Write(ctx context.Context, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("environment variable %s: %w", e.envKey, ErrReadOnly)
}
