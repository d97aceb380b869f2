package catalog

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/shopsphere-client/domain/catalog"
	"github.com/example/shopsphere-client/modules/gateway"
)

// Port is the interface other modules use to reach the catalog.
type Port interface {
	Browse(ctx context.Context, keyword, category string) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Save(ctx context.Context, id int64, in gateway.ProductInput) (domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

// adapter implements Port using the service container.
type adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a Port over the catalog module's container.
func NewAdapter(container mono.ServiceContainer) Port {
	return &adapter{container: container}
}

func (a *adapter) Browse(ctx context.Context, keyword, category string) ([]domain.Product, error) {
	req := BrowseRequest{Keyword: keyword, Category: category}
	var resp BrowseResponse
	if err := call(ctx, a, "browse-products", &req, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (a *adapter) Get(ctx context.Context, id int64) (domain.Product, error) {
	req := GetRequest{ID: id}
	var resp GetResponse
	if err := call(ctx, a, "get-product", &req, &resp); err != nil {
		return domain.Product{}, err
	}
	return resp.Product, nil
}

func (a *adapter) Save(ctx context.Context, id int64, in gateway.ProductInput) (domain.Product, error) {
	req := SaveRequest{ID: id, Input: in}
	var resp SaveResponse
	if err := call(ctx, a, "save-product", &req, &resp); err != nil {
		return domain.Product{}, err
	}
	return resp.Product, nil
}

func (a *adapter) Delete(ctx context.Context, id int64) error {
	req := DeleteRequest{ID: id}
	var resp DeleteResponse
	return call(ctx, a, "delete-product", &req, &resp)
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
	case strings.Contains(msg, "product name is required"):
		return ErrMissingName
	case strings.Contains(msg, "unauthorized"):
		return gateway.ErrUnauthorized
	}
	return err
}
