package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/shopsphere-client/modules/gateway"
	"github.com/example/shopsphere-client/modules/session"
)

// Module wraps the cart store and exposes it over the service container.
type Module struct {
	gw      *gateway.Module
	session *session.Module
	store   *Store
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the cart module. Both collaborators must be registered
// before this module so their stores exist when Start runs.
func NewModule(gw *gateway.Module, sess *session.Module) *Module {
	return &Module{gw: gw, session: sess}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cart"
}

// Start builds the store and performs the initial reload (a no-op fetch
// while anonymous).
func (m *Module) Start(ctx context.Context) error {
	m.store = NewStore(m.gw.Client(), m.session.Store())
	if err := m.store.Reload(ctx); err != nil {
		// A failed initial fetch leaves an empty cart; the next reload
		// after a user action replaces it.
		log.Printf("[cart] initial reload failed: %v", err)
	}
	log.Printf("[cart] Module started (%d items held)", m.store.ItemCount())
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[cart] Module stopped")
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
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"items": m.store.ItemCount(),
		},
	}
}

// Store returns the underlying cart store for in-process collaborators.
func (m *Module) Store() *Store {
	return m.store
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	services := map[string]func(context.Context, MutateRequest, *mono.Msg) (MutateResponse, error){
		"add":          m.handleAdd,
		"set-quantity": m.handleSetQuantity,
		"remove":       m.handleRemove,
		"clear":        m.handleClear,
		"reload":       m.handleReload,
	}
	for name, handlerFn := range services {
		if err := helper.RegisterTypedRequestReplyService(
			container,
			name,
			json.Unmarshal,
			json.Marshal,
			handlerFn,
		); err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"snapshot",
		json.Unmarshal,
		json.Marshal,
		m.handleSnapshot,
	); err != nil {
		return fmt.Errorf("failed to register snapshot service: %w", err)
	}

	log.Printf("[cart] Registered services: add, set-quantity, remove, clear, reload, snapshot")
	return nil
}

func (m *Module) handleAdd(ctx context.Context, req MutateRequest, _ *mono.Msg) (MutateResponse, error) {
	return MutateResponse{}, m.store.Add(ctx, req.ProductID, req.Quantity)
}

func (m *Module) handleSetQuantity(ctx context.Context, req MutateRequest, _ *mono.Msg) (MutateResponse, error) {
	return MutateResponse{}, m.store.SetQuantity(ctx, req.ProductID, req.Quantity)
}

func (m *Module) handleRemove(ctx context.Context, req MutateRequest, _ *mono.Msg) (MutateResponse, error) {
	return MutateResponse{}, m.store.Remove(ctx, req.ProductID)
}

func (m *Module) handleClear(ctx context.Context, _ MutateRequest, _ *mono.Msg) (MutateResponse, error) {
	return MutateResponse{}, m.store.Clear(ctx)
}

func (m *Module) handleReload(ctx context.Context, _ MutateRequest, _ *mono.Msg) (MutateResponse, error) {
	return MutateResponse{}, m.store.Reload(ctx)
}

func (m *Module) handleSnapshot(_ context.Context, _ SnapshotRequest, _ *mono.Msg) (SnapshotResponse, error) {
	return SnapshotResponse{
		Lines:     m.store.Lines(),
		ItemCount: m.store.ItemCount(),
		Total:     m.store.Total(),
	}, nil
}
