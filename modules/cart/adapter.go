package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/shopsphere-client/modules/gateway"
)

// Port is the interface other modules use to reach the cart store.
type Port interface {
	Add(ctx context.Context, productID int64, quantity int) error
	SetQuantity(ctx context.Context, productID int64, quantity int) error
	Remove(ctx context.Context, productID int64) error
	Clear(ctx context.Context) error
	Reload(ctx context.Context) error
	Snapshot(ctx context.Context) (SnapshotResponse, error)
}

// adapter implements Port using the service container.
type adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a Port over the cart module's container.
func NewAdapter(container mono.ServiceContainer) Port {
	return &adapter{container: container}
}

func (a *adapter) Add(ctx context.Context, productID int64, quantity int) error {
	return a.mutate(ctx, "add", MutateRequest{ProductID: productID, Quantity: quantity})
}

func (a *adapter) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	return a.mutate(ctx, "set-quantity", MutateRequest{ProductID: productID, Quantity: quantity})
}

func (a *adapter) Remove(ctx context.Context, productID int64) error {
	return a.mutate(ctx, "remove", MutateRequest{ProductID: productID})
}

func (a *adapter) Clear(ctx context.Context) error {
	return a.mutate(ctx, "clear", MutateRequest{})
}

func (a *adapter) Reload(ctx context.Context) error {
	return a.mutate(ctx, "reload", MutateRequest{})
}

func (a *adapter) Snapshot(ctx context.Context) (SnapshotResponse, error) {
	req := SnapshotRequest{}
	var resp SnapshotResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"snapshot",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return SnapshotResponse{}, fmt.Errorf("snapshot request failed: %w", err)
	}
	return resp, nil
}

func (a *adapter) mutate(ctx context.Context, service string, req MutateRequest) error {
	var resp MutateResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
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
	case strings.Contains(msg, "login required"):
		return ErrLoginRequired
	case strings.Contains(msg, "invalid quantity"):
		return ErrInvalidQuantity
	case strings.Contains(msg, "unauthorized"):
		return gateway.ErrUnauthorized
	}
	return err
}
