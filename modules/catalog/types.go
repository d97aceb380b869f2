package catalog

import (
	domain "github.com/example/shopsphere-client/domain/catalog"
	"github.com/example/shopsphere-client/modules/gateway"
)

// BrowseRequest selects the product listing: a keyword wins over a
// category; both empty means the full collection.
type BrowseRequest struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

// BrowseResponse carries the fetched collection.
type BrowseResponse struct {
	Products []domain.Product `json:"products"`
}

// GetRequest fetches one product.
type GetRequest struct {
	ID int64 `json:"id"`
}

// GetResponse carries one product.
type GetResponse struct {
	Product domain.Product `json:"product"`
}

// SaveRequest creates (ID zero) or updates (ID set) a product.
type SaveRequest struct {
	ID    int64                `json:"id"`
	Input gateway.ProductInput `json:"input"`
}

// SaveResponse carries the saved product.
type SaveResponse struct {
	Product domain.Product `json:"product"`
}

// DeleteRequest removes one product.
type DeleteRequest struct {
	ID int64 `json:"id"`
}

// DeleteResponse acknowledges a removal.
type DeleteResponse struct{}
