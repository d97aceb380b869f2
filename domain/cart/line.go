package cart

import (
	"github.com/shopspring/decimal"
)

// Line is one product-quantity pairing within the user's pending order.
// All fields, including TotalPrice, are owned server-side; the client
// re-fetches the full collection after every mutation instead of deriving
// line totals locally.
type Line struct {
	ProductID       int64           `json:"productId"`
	ProductName     string          `json:"productName"`
	ProductImageURL string          `json:"productImageUrl"`
	ProductPrice    decimal.Decimal `json:"productPrice"`
	Quantity        int             `json:"quantity"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
}

// ItemCount is the sum of quantities over the collection.
func ItemCount(lines []Line) int {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}

// Total is the sum of line totals over the collection.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalPrice)
	}
	return total
}
