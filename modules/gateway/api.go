package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/example/shopsphere-client/domain/cart"
	"github.com/example/shopsphere-client/domain/catalog"
	"github.com/example/shopsphere-client/domain/identity"
	"github.com/example/shopsphere-client/domain/order"
)

// Auth endpoints.

// Login exchanges credentials for a bearer token and identity fields. The
// caller decides whether to store the token; Login itself holds no state.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account. It never yields a token.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/register", registerRequest{Name: name, Email: email, Password: password}, nil)
}

// Profile re-derives the identity behind the held token.
func (c *Client) Profile(ctx context.Context) (*identity.Identity, error) {
	var ident identity.Identity
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &ident); err != nil {
		return nil, err
	}
	return &ident, nil
}

// Product endpoints.

func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, id int64) (*catalog.Product, error) {
	var product catalog.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) SearchProducts(ctx context.Context, keyword string) ([]catalog.Product, error) {
	var products []catalog.Product
	path := "/products/search?keyword=" + url.QueryEscape(keyword)
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	var products []catalog.Product
	path := "/products/category/" + url.PathEscape(category)
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*catalog.Product, error) {
	var product catalog.Product
	if err := c.do(ctx, http.MethodPost, "/products", in, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*catalog.Product, error) {
	var product catalog.Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), in, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}

// Cart endpoints.

func (c *Client) CartItems(ctx context.Context) ([]cart.Line, error) {
	var lines []cart.Line
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) error {
	return c.do(ctx, http.MethodPost, "/cart/add", cartMutation{ProductID: productID, Quantity: quantity}, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, productID int64, quantity int) error {
	return c.do(ctx, http.MethodPut, "/cart/update", cartMutation{ProductID: productID, Quantity: quantity}, nil)
}

func (c *Client) RemoveFromCart(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/remove/%d", productID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart/clear", nil, nil)
}

// Order endpoints.

func (c *Client) CreateOrder(ctx context.Context, shippingAddress string) (*order.Order, error) {
	var placed order.Order
	if err := c.do(ctx, http.MethodPost, "/orders", orderRequest{ShippingAddress: shippingAddress}, &placed); err != nil {
		return nil, err
	}
	return &placed, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) Order(ctx context.Context, id int64) (*order.Order, error) {
	var found order.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, &found); err != nil {
		return nil, err
	}
	return &found, nil
}

func (c *Client) AllOrders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	if err := c.do(ctx, http.MethodGet, "/orders/admin/all", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status order.Status) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d/status", id), statusRequest{Status: status}, nil)
}
