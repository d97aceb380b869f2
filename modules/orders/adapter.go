package orders

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/shopsphere-client/domain/order"
	"github.com/example/shopsphere-client/modules/gateway"
)

// Port is the interface other modules use to reach order operations.
type Port interface {
	Checkout(ctx context.Context, shippingAddress string) (order.Order, error)
	Mine(ctx context.Context) ([]order.Order, error)
	All(ctx context.Context) ([]order.Order, error)
	Get(ctx context.Context, id int64) (order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status) error
}

// adapter implements Port using the service container.
type adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a Port over the orders module's container.
func NewAdapter(container mono.ServiceContainer) Port {
	return &adapter{container: container}
}

func (a *adapter) Checkout(ctx context.Context, shippingAddress string) (order.Order, error) {
	req := CheckoutRequest{ShippingAddress: shippingAddress}
	var resp CheckoutResponse
	if err := call(ctx, a, "checkout", &req, &resp); err != nil {
		return order.Order{}, err
	}
	return resp.Order, nil
}

func (a *adapter) Mine(ctx context.Context) ([]order.Order, error) {
	return a.list(ctx, false)
}

func (a *adapter) All(ctx context.Context) ([]order.Order, error) {
	return a.list(ctx, true)
}

func (a *adapter) list(ctx context.Context, all bool) ([]order.Order, error) {
	req := ListRequest{All: all}
	var resp ListResponse
	if err := call(ctx, a, "list-orders", &req, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (a *adapter) Get(ctx context.Context, id int64) (order.Order, error) {
	req := GetRequest{ID: id}
	var resp GetResponse
	if err := call(ctx, a, "get-order", &req, &resp); err != nil {
		return order.Order{}, err
	}
	return resp.Order, nil
}

func (a *adapter) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	req := StatusRequest{ID: id, Status: status}
	var resp StatusResponse
	return call(ctx, a, "update-order-status", &req, &resp)
}

// call is a free function rather than a method because methods cannot
// have type parameters, and CallRequestReplyService needs a typed
// response pointer to infer its type arguments.
func call[TReq, TResp any](ctx context.Context, a *adapter, service string, req *TReq, resp *TResp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return mapServiceError(err)
	}
	return nil
}

// mapServiceError converts service errors back to sentinel errors by
// matching the message, since error types do not survive the container
// round trip.
func mapServiceError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "shipping address is required"):
		return ErrMissingAddress
	case strings.Contains(msg, "invalid order status"):
		return ErrInvalidStatus
	case strings.Contains(msg, "unauthorized"):
		return gateway.ErrUnauthorized
	}
	return err
}
