package order

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order state as reported by the server. The client never
// enforces transition legality; it offers every status and lets the server
// accept or reject the change.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// AllStatuses lists every selectable status in display order.
var AllStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// noOffsetLayout is the timestamp shape the server emits: an ISO local
// date-time with no timezone offset.
const noOffsetLayout = "2006-01-02T15:04:05"

// Time decodes the server's order timestamps. They arrive without a
// timezone offset, which the stock time.Time decoder rejects; offset-carrying
// values are accepted too.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse(noOffsetLayout, raw)
	}
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Item is one line of a placed order.
type Item struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"productId"`
	ProductName     string          `json:"productName"`
	ProductImageURL string          `json:"productImageUrl"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
}

// Order mirrors the remote API's order resource.
type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	UserName        string          `json:"userName"`
	Items           []Item          `json:"orderItems"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          Status          `json:"status"`
	ShippingAddress string          `json:"shippingAddress"`
	CreatedAt       Time            `json:"createdAt"`
}
