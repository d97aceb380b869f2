package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/shopsphere-client/modules/gateway"
)

// Module wraps the session store and exposes it over the service container.
type Module struct {
	gw    *gateway.Module
	store *Store
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the session module over the gateway module, which must
// be registered (and therefore started) first.
func NewModule(gw *gateway.Module) *Module {
	return &Module{gw: gw}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "session"
}

// Start builds the store and derives the initial session from the persisted
// credential.
func (m *Module) Start(ctx context.Context) error {
	m.store = NewStore(m.gw.Client())
	m.store.Init(ctx)

	if _, ok := m.store.Current(); ok {
		log.Println("[session] Module started (authenticated)")
	} else {
		log.Println("[session] Module started (anonymous)")
	}
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[session] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}
	_, authenticated := m.store.Current()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"authenticated": authenticated,
		},
	}
}

// Store returns the underlying session store for in-process collaborators.
func (m *Module) Store() *Store {
	return m.store
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"login",
		json.Unmarshal,
		json.Marshal,
		m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"register",
		json.Unmarshal,
		json.Marshal,
		m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"logout",
		json.Unmarshal,
		json.Marshal,
		m.handleLogout,
	); err != nil {
		return fmt.Errorf("failed to register logout service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"current",
		json.Unmarshal,
		json.Marshal,
		m.handleCurrent,
	); err != nil {
		return fmt.Errorf("failed to register current service: %w", err)
	}

	log.Printf("[session] Registered services: login, register, logout, current")
	return nil
}

func (m *Module) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	ident, err := m.store.Login(ctx, req.Email, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{Identity: ident}, nil
}

func (m *Module) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	if err := m.store.Register(ctx, req.Name, req.Email, req.Password); err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{}, nil
}

func (m *Module) handleLogout(_ context.Context, _ LogoutRequest, _ *mono.Msg) (LogoutResponse, error) {
	if err := m.store.Logout(); err != nil {
		return LogoutResponse{}, err
	}
	return LogoutResponse{}, nil
}

func (m *Module) handleCurrent(_ context.Context, _ CurrentRequest, _ *mono.Msg) (CurrentResponse, error) {
	ident, ok := m.store.Current()
	return CurrentResponse{Authenticated: ok, Identity: ident}, nil
}
