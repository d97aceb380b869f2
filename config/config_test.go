package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, DefaultCredentialDB, cfg.CredentialDB)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout.Std())
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout.Std())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopsphere.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: http://api.example.com/api
listen: ":4000"
request_timeout: 5s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://api.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, ":4000", cfg.Listen)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout.Std())
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultCredentialDB, cfg.CredentialDB)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout.Std())
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopsphere.yaml")
	require.NoError(t, os.WriteFile(path, []byte("request_timeout: soon\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopsphere.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":4000\"\n"), 0o600))

	t.Setenv("SHOPSPHERE_LISTEN", ":5000")
	t.Setenv("SHOPSPHERE_REQUEST_TIMEOUT", "3s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Listen)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout.Std())
}
