package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/shopsphere-client/domain/order"
	"github.com/example/shopsphere-client/modules/gateway"
)

var (
	// ErrMissingAddress is returned before any network call when checkout
	// has no shipping address.
	ErrMissingAddress = errors.New("shipping address is required")
	// ErrInvalidStatus is returned before any network call when the
	// requested status is not a known value.
	ErrInvalidStatus = errors.New("invalid order status")
)

// Service places orders and reads order collections. Like the catalog it
// holds no state; views refetch after every mutation.
type Service struct {
	gw *gateway.Client
}

// NewService creates a Service over the gateway client.
func NewService(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

// Checkout places an order for the current cart contents.
func (s *Service) Checkout(ctx context.Context, shippingAddress string) (*order.Order, error) {
	if strings.TrimSpace(shippingAddress) == "" {
		return nil, ErrMissingAddress
	}
	placed, err := s.gw.CreateOrder(ctx, shippingAddress)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	return placed, nil
}

// Mine lists the authenticated user's own orders.
func (s *Service) Mine(ctx context.Context) ([]order.Order, error) {
	return s.gw.MyOrders(ctx)
}

// Get fetches one order.
func (s *Service) Get(ctx context.Context, id int64) (*order.Order, error) {
	return s.gw.Order(ctx, id)
}

// All lists every order; the server enforces the admin requirement.
func (s *Service) All(ctx context.Context) ([]order.Order, error) {
	return s.gw.AllOrders(ctx)
}

// UpdateStatus requests a status change. Transition legality is the
// server's call; only the value itself is checked here.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return s.gw.UpdateOrderStatus(ctx, id, status)
}
