package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/shopsphere-client/modules/gateway"
)

// Module exposes the product collection over the service container.
type Module struct {
	gw      *gateway.Module
	service *Service
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the catalog module over the gateway module.
func NewModule(gw *gateway.Module) *Module {
	return &Module{gw: gw}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "catalog"
}

// Start builds the service.
func (m *Module) Start(_ context.Context) error {
	m.service = NewService(m.gw.Client())
	log.Println("[catalog] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[catalog] Module stopped")
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
		"browse-products",
		json.Unmarshal,
		json.Marshal,
		m.handleBrowse,
	); err != nil {
		return fmt.Errorf("failed to register browse-products service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"get-product",
		json.Unmarshal,
		json.Marshal,
		m.handleGet,
	); err != nil {
		return fmt.Errorf("failed to register get-product service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"save-product",
		json.Unmarshal,
		json.Marshal,
		m.handleSave,
	); err != nil {
		return fmt.Errorf("failed to register save-product service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"delete-product",
		json.Unmarshal,
		json.Marshal,
		m.handleDelete,
	); err != nil {
		return fmt.Errorf("failed to register delete-product service: %w", err)
	}

	log.Printf("[catalog] Registered services: browse-products, get-product, save-product, delete-product")
	return nil
}

func (m *Module) handleBrowse(ctx context.Context, req BrowseRequest, _ *mono.Msg) (BrowseResponse, error) {
	products, err := m.service.Browse(ctx, req.Keyword, req.Category)
	if err != nil {
		return BrowseResponse{}, err
	}
	return BrowseResponse{Products: products}, nil
}

func (m *Module) handleGet(ctx context.Context, req GetRequest, _ *mono.Msg) (GetResponse, error) {
	product, err := m.service.Get(ctx, req.ID)
	if err != nil {
		return GetResponse{}, err
	}
	return GetResponse{Product: *product}, nil
}

func (m *Module) handleSave(ctx context.Context, req SaveRequest, _ *mono.Msg) (SaveResponse, error) {
	if req.ID == 0 {
		created, err := m.service.Create(ctx, req.Input)
		if err != nil {
			return SaveResponse{}, err
		}
		return SaveResponse{Product: *created}, nil
	}
	updated, err := m.service.Update(ctx, req.ID, req.Input)
	if err != nil {
		return SaveResponse{}, err
	}
	return SaveResponse{Product: *updated}, nil
}

func (m *Module) handleDelete(ctx context.Context, req DeleteRequest, _ *mono.Msg) (DeleteResponse, error) {
	return DeleteResponse{}, m.service.Delete(ctx, req.ID)
}
