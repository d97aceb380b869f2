package orders

import (
	"github.com/example/shopsphere-client/domain/order"
)

// CheckoutRequest places an order for the current cart contents.
type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

// CheckoutResponse carries the placed order.
type CheckoutResponse struct {
	Order order.Order `json:"order"`
}

// ListRequest selects an order listing; All requires the admin role
// server-side.
type ListRequest struct {
	All bool `json:"all"`
}

// ListResponse carries the fetched collection.
type ListResponse struct {
	Orders []order.Order `json:"orders"`
}

// GetRequest fetches one order.
type GetRequest struct {
	ID int64 `json:"id"`
}

// GetResponse carries one order.
type GetResponse struct {
	Order order.Order `json:"order"`
}

// StatusRequest asks the server to change an order's status.
type StatusRequest struct {
	ID     int64        `json:"id"`
	Status order.Status `json:"status"`
}

// StatusResponse acknowledges a status change.
type StatusResponse struct{}
