package gateway

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
)

// Config holds the gateway settings.
type Config struct {
	// BaseURL is the root of the remote API, including any path prefix
	// (e.g. http://localhost:8080/api).
	BaseURL string
	// CredentialPath is the SQLite file holding the persisted bearer token.
	CredentialPath string
	// Timeout bounds every outbound call. The original client let a stalled
	// call hang its handler forever; bounding it here is a deliberate
	// improvement.
	Timeout time.Duration
}

// Module owns the HTTP client to the remote API and the durable credential
// store. Other modules receive the module at construction and take the
// client once it has started.
type Module struct {
	cfg    Config
	creds  *CredentialStore
	client *Client
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the gateway module.
func NewModule(cfg Config) *Module {
	return &Module{cfg: cfg}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "gateway"
}

// Start opens the credential store and builds the client, loading any
// persisted token.
func (m *Module) Start(_ context.Context) error {
	creds, err := OpenCredentialStore(m.cfg.CredentialPath)
	if err != nil {
		return err
	}
	m.creds = creds

	client, err := NewClient(m.cfg.BaseURL, creds, m.cfg.Timeout)
	if err != nil {
		return err
	}
	m.client = client

	log.Printf("[gateway] Module started (api: %s, credentials: %s)", m.cfg.BaseURL, m.cfg.CredentialPath)
	return nil
}

// Stop closes the credential store.
func (m *Module) Stop(_ context.Context) error {
	if m.creds != nil {
		if err := m.creds.Close(); err != nil {
			return err
		}
	}
	log.Println("[gateway] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "client not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"api":           m.cfg.BaseURL,
			"token_present": m.client.HasToken(),
		},
	}
}

// Client returns the started client. It panics when called before Start;
// modules are started in registration order, so dependents registered after
// the gateway never observe that state.
func (m *Module) Client() *Client {
	if m.client == nil {
		panic(fmt.Sprintf("gateway: Client() called before Start on module %q", m.Name()))
	}
	return m.client
}
