package catalog

import (
	"github.com/shopspring/decimal"
)

// Product mirrors the remote API's product resource. The server owns all
// product state; the client only coerces form input (price to decimal,
// stock to integer) before submission.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// PlaceholderImage is used when a product has no image URL.
const PlaceholderImage = "https://via.placeholder.com/300x200?text=No+Image"

// Image returns the product image URL or the placeholder.
func (p Product) Image() string {
	if p.ImageURL == "" {
		return PlaceholderImage
	}
	return p.ImageURL
}
