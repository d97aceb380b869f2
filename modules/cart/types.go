package cart

import (
	"github.com/shopspring/decimal"

	domain "github.com/example/shopsphere-client/domain/cart"
)

// MutateRequest targets one product line.
type MutateRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// MutateResponse acknowledges a mutation.
type MutateResponse struct{}

// SnapshotRequest asks for the held collection and its derived values.
type SnapshotRequest struct{}

// SnapshotResponse is the held collection plus the derived item count and
// total.
type SnapshotResponse struct {
	Lines     []domain.Line   `json:"lines"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}
