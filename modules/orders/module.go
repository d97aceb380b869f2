package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/shopsphere-client/modules/gateway"
)

// Module exposes order operations over the service container.
type Module struct {
	gw      *gateway.Module
	service *Service
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the orders module over the gateway module.
func NewModule(gw *gateway.Module) *Module {
	return &Module{gw: gw}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "orders"
}

// Start builds the service.
func (m *Module) Start(_ context.Context) error {
	m.service = NewService(m.gw.Client())
	log.Println("[orders] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[orders] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.service != nil,
		Message: "operational",
	}
}

// Service returns the underlying service for in-process collaborators.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"checkout",
		json.Unmarshal,
		json.Marshal,
		m.handleCheckout,
	); err != nil {
		return fmt.Errorf("failed to register checkout service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"list-orders",
		json.Unmarshal,
		json.Marshal,
		m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register list-orders service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"get-order",
		json.Unmarshal,
		json.Marshal,
		m.handleGet,
	); err != nil {
		return fmt.Errorf("failed to register get-order service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"update-order-status",
		json.Unmarshal,
		json.Marshal,
		m.handleStatus,
	); err != nil {
		return fmt.Errorf("failed to register update-order-status service: %w", err)
	}

	log.Printf("[orders] Registered services: checkout, list-orders, get-order, update-order-status")
	return nil
}

func (m *Module) handleCheckout(ctx context.Context, req CheckoutRequest, _ *mono.Msg) (CheckoutResponse, error) {
	placed, err := m.service.Checkout(ctx, req.ShippingAddress)
	if err != nil {
		return CheckoutResponse{}, err
	}
	return CheckoutResponse{Order: *placed}, nil
}

func (m *Module) handleList(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	var err error
	resp := ListResponse{}
	if req.All {
		resp.Orders, err = m.service.All(ctx)
	} else {
		resp.Orders, err = m.service.Mine(ctx)
	}
	if err != nil {
		return ListResponse{}, err
	}
	return resp, nil
}

func (m *Module) handleGet(ctx context.Context, req GetRequest, _ *mono.Msg) (GetResponse, error) {
	found, err := m.service.Get(ctx, req.ID)
	if err != nil {
		return GetResponse{}, err
	}
	return GetResponse{Order: *found}, nil
}

func (m *Module) handleStatus(ctx context.Context, req StatusRequest, _ *mono.Msg) (StatusResponse, error) {
	return StatusResponse{}, m.service.UpdateStatus(ctx, req.ID, req.Status)
}
