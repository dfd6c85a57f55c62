package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/florianilch/tavla/internal/dashboard"
	"github.com/florianilch/tavla/internal/observability"
	"github.com/florianilch/tavla/internal/secretstore"
	"github.com/florianilch/tavla/internal/vasttrafik"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = observability.FormatText
	LogFormatJSON LogFormat = observability.FormatJSON
	LogFormatOTel LogFormat = observability.FormatOTel
)

// SecretStorageType represents the backends the client secret can be read from.
type SecretStorageType string

const (
	SecretStorageTypeEnv     SecretStorageType = "env"
	SecretStorageTypeFile    SecretStorageType = "file"
	SecretStorageTypeKeyring SecretStorageType = "keyring"
)

// Default configuration values
const (
	DefaultConfigLogFormat       = LogFormatText
	DefaultConfigOTLPProtocol    = observability.ProtocolHTTP
	DefaultConfigServerHost      = "127.0.0.1"
	DefaultConfigServerPort      = 5000
	DefaultConfigShutdownTimeout = 5 * time.Second
	DefaultConfigUpstreamBaseURL = vasttrafik.DefaultBaseURL
	DefaultConfigTokenURL        = vasttrafik.DefaultTokenURL
	DefaultConfigUpstreamTimeout = vasttrafik.DefaultTimeout
	DefaultConfigBoardStopID     = "9021014001960000" // Chalmers, Göteborg
	DefaultConfigBoardTitle      = "Chalmers, Göteborg"
	DefaultConfigBoardRefresh    = dashboard.DefaultRefresh
	DefaultConfigAuthStorage     = SecretStorageTypeEnv
	DefaultConfigAuthEnvKey      = secretstore.DefaultEnvKey
)

// OTLPConfig holds optional log export settings.
type OTLPConfig struct {
	// Endpoint of the collector, e.g. "localhost:4318". Empty disables export.
	Endpoint string `json:"endpoint,omitempty"`
	Protocol string `json:"protocol" validate:"oneof=http grpc"`
}

// LogConfig groups logging settings beyond level and format.
type LogConfig struct {
	OTLP OTLPConfig `json:"otlp"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host string `json:"host" validate:"hostname_rfc1123|ip"`
	Port uint16 `json:"port"` // Port range 0-65535 handled by uint16 type
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	// Timeout for graceful shutdown.
	Timeout time.Duration `json:"timeout"`
}

// UpstreamConfig holds Västtrafik API configuration.
type UpstreamConfig struct {
	BaseURL  string        `json:"base_url" validate:"required,url"`
	TokenURL string        `json:"token_url" validate:"required,url"`
	Timeout  time.Duration `json:"timeout"`
}

// BoardConfig selects the stop area and how it is presented.
type BoardConfig struct {
	StopID  string        `json:"stop_id" validate:"required,numeric"`
	Title   string        `json:"title"`
	Refresh time.Duration `json:"refresh"`
}

// AuthConfig describes the client credentials. The client id is plain
// configuration; the secret comes from a SecretStore.
type AuthConfig struct {
	ClientID string `json:"client_id"`

	// Storage configuration - where the client secret comes from
	Storage SecretStorageType `json:"storage" validate:"required,oneof=env file keyring"`

	// Storage-specific settings (mutually exclusive based on Storage type)
	File        string `json:"file,omitempty"`         // For file storage: path to secret file
	EnvKey      string `json:"env_key,omitempty"`      // For env storage: environment variable name
	KeyringUser string `json:"keyring_user,omitempty"` // For keyring storage: user identifier

	// ReuseToken keeps the access token until it expires instead of
	// exchanging credentials on every refresh.
	ReuseToken bool `json:"reuse_token"`
}

// NewSecretStore creates the SecretStore selected by the configuration.
func (a *AuthConfig) NewSecretStore() (secretstore.Store, error) {
	switch a.Storage {
	case SecretStorageTypeEnv:
		return secretstore.NewEnvStore(a.EnvKey)
	case SecretStorageTypeFile:
		return secretstore.NewFileStore(a.File)
	case SecretStorageTypeKeyring:
		return secretstore.NewKeyringStore(secretstore.KeyringService, a.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", a.Storage)
	}
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level     `json:"log_level"`
	LogFormat LogFormat      `json:"log_format" validate:"oneof=text json otel"`
	Log       LogConfig      `json:"log"`
	Server    ServerConfig   `json:"server"`
	Shutdown  ShutdownConfig `json:"shutdown"`
	Upstream  UpstreamConfig `json:"upstream"`
	Board     BoardConfig    `json:"board"`
	Auth      AuthConfig     `json:"auth"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Log.OTLP.Protocol == "" {
		c.Log.OTLP.Protocol = DefaultConfigOTLPProtocol
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfigServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultConfigServerPort
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = DefaultConfigUpstreamBaseURL
	}
	if c.Upstream.TokenURL == "" {
		c.Upstream.TokenURL = DefaultConfigTokenURL
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultConfigUpstreamTimeout
	}
	if c.Board.StopID == "" {
		c.Board.StopID = DefaultConfigBoardStopID
	}
	if c.Board.Title == "" {
		c.Board.Title = DefaultConfigBoardTitle
	}
	if c.Board.Refresh == 0 {
		c.Board.Refresh = DefaultConfigBoardRefresh
	}
	if c.Auth.Storage == "" {
		c.Auth.Storage = DefaultConfigAuthStorage
	}

	// Dynamic defaults based on storage type
	switch c.Auth.Storage {
	case SecretStorageTypeEnv:
		if c.Auth.EnvKey == "" {
			c.Auth.EnvKey = DefaultConfigAuthEnvKey
		}
	case SecretStorageTypeFile:
		if c.Auth.File == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("auth.file required (auto-detect failed: %w)", err)
			}
			c.Auth.File = filepath.Join(configDir, "tavla", "client_secret")
		}
	case SecretStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("auth.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Auth.KeyringUser = currentUser.Username
		}
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
// The client id is checked separately by RequireCredentials since storing a
// secret does not need it.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Board.Refresh < time.Second {
		return fmt.Errorf("board.refresh must be at least 1s, got %s", c.Board.Refresh)
	}
	if c.Upstream.Timeout < 0 {
		return errors.New("upstream.timeout cannot be negative")
	}
	if c.Shutdown.Timeout < 0 {
		return errors.New("shutdown.timeout cannot be negative")
	}

	switch c.Auth.Storage {
	case SecretStorageTypeEnv:
		if c.Auth.EnvKey == "" {
			return errors.New("env_key required for env storage")
		}
	case SecretStorageTypeFile:
		if c.Auth.File == "" {
			return errors.New("file path required for file storage")
		}
	case SecretStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			return errors.New("keyring_user required for keyring storage")
		}
	}

	return nil
}

// RequireCredentials reports whether a client id is configured.
func (c *Config) RequireCredentials() error {
	if c.Auth.ClientID == "" {
		return errors.New("auth.client_id required (set TAVLA_AUTH__CLIENT_ID or VT_KEY)")
	}
	return nil
}
