// Package config loads the application settings from defaults, an optional
// YAML file, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultAPIBaseURL      = "http://localhost:8080/api"
	DefaultListen          = ":3000"
	DefaultCredentialDB    = "shopsphere.db"
	DefaultRequestTimeout  = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Duration wraps time.Duration so YAML values can be written as "15s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds the full application configuration.
type Config struct {
	// APIBaseURL is the root of the remote storefront API.
	APIBaseURL string `yaml:"api_base_url"`
	// Listen is the local address the web UI binds to.
	Listen string `yaml:"listen"`
	// CredentialDB is the SQLite file persisting the session token.
	CredentialDB string `yaml:"credential_db"`
	// RequestTimeout bounds every outgoing API call.
	RequestTimeout Duration `yaml:"request_timeout"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIBaseURL:      DefaultAPIBaseURL,
		Listen:          DefaultListen,
		CredentialDB:    DefaultCredentialDB,
		RequestTimeout:  Duration(DefaultRequestTimeout),
		ShutdownTimeout: Duration(DefaultShutdownTimeout),
	}
}

// Load builds the configuration: defaults, then the YAML file at path when
// it exists, then SHOPSPHERE_* environment variables. An empty path skips
// the file step.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; defaults apply.
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SHOPSPHERE_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("SHOPSPHERE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("SHOPSPHERE_CREDENTIAL_DB"); v != "" {
		cfg.CredentialDB = v
	}
	if v := os.Getenv("SHOPSPHERE_REQUEST_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = Duration(parsed)
		}
	}
	if v := os.Getenv("SHOPSPHERE_SHUTDOWN_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = Duration(parsed)
		}
	}
}
