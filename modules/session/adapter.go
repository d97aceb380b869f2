package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/shopsphere-client/domain/identity"
	"github.com/example/shopsphere-client/modules/gateway"
)

// Port is the interface other modules use to reach the session store.
type Port interface {
	Login(ctx context.Context, email, password string) (identity.Identity, error)
	Register(ctx context.Context, name, email, password string) error
	Logout(ctx context.Context) error
	Current(ctx context.Context) (identity.Identity, bool, error)
}

// adapter implements Port using the service container.
type adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a Port over the session module's container.
func NewAdapter(container mono.ServiceContainer) Port {
	return &adapter{container: container}
}

func (a *adapter) Login(ctx context.Context, email, password string) (identity.Identity, error) {
	req := LoginRequest{Email: email, Password: password}
	var resp LoginResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"login",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return identity.Identity{}, mapServiceError(err)
	}
	return resp.Identity, nil
}

func (a *adapter) Register(ctx context.Context, name, email, password string) error {
	req := RegisterRequest{Name: name, Email: email, Password: password}
	var resp RegisterResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"register",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return mapServiceError(err)
	}
	return nil
}

func (a *adapter) Logout(ctx context.Context) error {
	req := LogoutRequest{}
	var resp LogoutResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"logout",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return mapServiceError(err)
	}
	return nil
}

func (a *adapter) Current(ctx context.Context) (identity.Identity, bool, error) {
	req := CurrentRequest{}
	var resp CurrentResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"current",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return identity.Identity{}, false, fmt.Errorf("current request failed: %w", err)
	}
	return resp.Identity, resp.Authenticated, nil
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
	case strings.Contains(msg, "invalid credentials"):
		return ErrLoginFailed
	case strings.Contains(msg, "email and password are required"):
		return ErrMissingCredentials
	case strings.Contains(msg, "name is required"):
		return ErrMissingName
	case strings.Contains(msg, "unauthorized"):
		return gateway.ErrUnauthorized
	}
	return err
}
