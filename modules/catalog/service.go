package catalog

import (
	"context"
	"errors"

	domain "github.com/example/shopsphere-client/domain/catalog"
	"github.com/example/shopsphere-client/modules/gateway"
)

// ErrMissingName is returned before any network call when a product
// submission has no name.
var ErrMissingName = errors.New("product name is required")

// Service reads the product collection and issues admin mutations. It holds
// no state: views refetch the owning collection in full after every
// successful mutation, so there is nothing to reconcile here.
type Service struct {
	gw *gateway.Client
}

// NewService creates a Service over the gateway client.
func NewService(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

// Browse fetches products the way the storefront asks for them: a keyword
// wins over a category, and neither means the full collection.
func (s *Service) Browse(ctx context.Context, keyword, category string) ([]domain.Product, error) {
	switch {
	case keyword != "":
		return s.gw.SearchProducts(ctx, keyword)
	case category != "":
		return s.gw.ProductsByCategory(ctx, category)
	default:
		return s.gw.Products(ctx)
	}
}

// Get fetches a single product.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.gw.Product(ctx, id)
}

// Create submits a new product.
func (s *Service) Create(ctx context.Context, in gateway.ProductInput) (*domain.Product, error) {
	if in.Name == "" {
		return nil, ErrMissingName
	}
	return s.gw.CreateProduct(ctx, in)
}

// Update replaces an existing product.
func (s *Service) Update(ctx context.Context, id int64, in gateway.ProductInput) (*domain.Product, error) {
	if in.Name == "" {
		return nil, ErrMissingName
	}
	return s.gw.UpdateProduct(ctx, id, in)
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.gw.DeleteProduct(ctx, id)
}
