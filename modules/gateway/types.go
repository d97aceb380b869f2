package gateway

import (
	"github.com/shopspring/decimal"

	"github.com/example/shopsphere-client/domain/order"
)

// LoginResponse mirrors the /auth/login payload: the bearer token plus the
// identity fields the session constructs its state from.
type LoginResponse struct {
	Token string `json:"token"`
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ProductInput is the client-side product submission payload. Price and
// stock are coerced before this struct is built; no further validation
// happens client-side.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type cartMutation struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type orderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

type statusRequest struct {
	Status order.Status `json:"status"`
}
