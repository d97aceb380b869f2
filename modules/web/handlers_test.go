package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopsphere-client/domain/catalog"
	"github.com/example/shopsphere-client/domain/identity"
	"github.com/example/shopsphere-client/domain/order"
	"github.com/example/shopsphere-client/modules/cart"
	mcatalog "github.com/example/shopsphere-client/modules/catalog"
	"github.com/example/shopsphere-client/modules/gateway"
	morders "github.com/example/shopsphere-client/modules/orders"
	"github.com/example/shopsphere-client/modules/session"
)

type mockSession struct {
	loginFn    func(ctx context.Context, email, password string) (identity.Identity, error)
	registerFn func(ctx context.Context, name, email, password string) error
	logoutFn   func(ctx context.Context) error
	currentFn  func(ctx context.Context) (identity.Identity, bool, error)
}

var _ session.Port = (*mockSession)(nil)

func (m *mockSession) Login(ctx context.Context, email, password string) (identity.Identity, error) {
	if m.loginFn == nil {
		return identity.Identity{}, session.ErrLoginFailed
	}
	return m.loginFn(ctx, email, password)
}

func (m *mockSession) Register(ctx context.Context, name, email, password string) error {
	if m.registerFn == nil {
		return nil
	}
	return m.registerFn(ctx, name, email, password)
}

func (m *mockSession) Logout(ctx context.Context) error {
	if m.logoutFn == nil {
		return nil
	}
	return m.logoutFn(ctx)
}

func (m *mockSession) Current(ctx context.Context) (identity.Identity, bool, error) {
	if m.currentFn == nil {
		return identity.Identity{}, false, nil
	}
	return m.currentFn(ctx)
}

type mockCart struct {
	addFn      func(ctx context.Context, productID int64, quantity int) error
	setFn      func(ctx context.Context, productID int64, quantity int) error
	removeFn   func(ctx context.Context, productID int64) error
	clearFn    func(ctx context.Context) error
	reloadFn   func(ctx context.Context) error
	snapshotFn func(ctx context.Context) (cart.SnapshotResponse, error)

	mutations int
	reloads   int
}

var _ cart.Port = (*mockCart)(nil)

func (m *mockCart) Add(ctx context.Context, productID int64, quantity int) error {
	m.mutations++
	if m.addFn == nil {
		return nil
	}
	return m.addFn(ctx, productID, quantity)
}

func (m *mockCart) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	m.mutations++
	if m.setFn == nil {
		return nil
	}
	return m.setFn(ctx, productID, quantity)
}

func (m *mockCart) Remove(ctx context.Context, productID int64) error {
	m.mutations++
	if m.removeFn == nil {
		return nil
	}
	return m.removeFn(ctx, productID)
}

func (m *mockCart) Clear(ctx context.Context) error {
	m.mutations++
	if m.clearFn == nil {
		return nil
	}
	return m.clearFn(ctx)
}

func (m *mockCart) Reload(ctx context.Context) error {
	m.reloads++
	if m.reloadFn == nil {
		return nil
	}
	return m.reloadFn(ctx)
}

func (m *mockCart) Snapshot(ctx context.Context) (cart.SnapshotResponse, error) {
	if m.snapshotFn == nil {
		return cart.SnapshotResponse{}, nil
	}
	return m.snapshotFn(ctx)
}

type mockCatalog struct {
	browseFn func(ctx context.Context, keyword, category string) ([]catalog.Product, error)
	getFn    func(ctx context.Context, id int64) (catalog.Product, error)
	saveFn   func(ctx context.Context, id int64, in gateway.ProductInput) (catalog.Product, error)
	deleteFn func(ctx context.Context, id int64) error
}

var _ mcatalog.Port = (*mockCatalog)(nil)

func (m *mockCatalog) Browse(ctx context.Context, keyword, category string) ([]catalog.Product, error) {
	if m.browseFn == nil {
		return nil, nil
	}
	return m.browseFn(ctx, keyword, category)
}

func (m *mockCatalog) Get(ctx context.Context, id int64) (catalog.Product, error) {
	if m.getFn == nil {
		return catalog.Product{}, nil
	}
	return m.getFn(ctx, id)
}

func (m *mockCatalog) Save(ctx context.Context, id int64, in gateway.ProductInput) (catalog.Product, error) {
	if m.saveFn == nil {
		return catalog.Product{}, nil
	}
	return m.saveFn(ctx, id, in)
}

func (m *mockCatalog) Delete(ctx context.Context, id int64) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

type mockOrders struct {
	checkoutFn func(ctx context.Context, shippingAddress string) (order.Order, error)
	mineFn     func(ctx context.Context) ([]order.Order, error)
	allFn      func(ctx context.Context) ([]order.Order, error)
	getFn      func(ctx context.Context, id int64) (order.Order, error)
	statusFn   func(ctx context.Context, id int64, status order.Status) error
}

var _ morders.Port = (*mockOrders)(nil)

func (m *mockOrders) Checkout(ctx context.Context, shippingAddress string) (order.Order, error) {
	if m.checkoutFn == nil {
		return order.Order{}, nil
	}
	return m.checkoutFn(ctx, shippingAddress)
}

func (m *mockOrders) Mine(ctx context.Context) ([]order.Order, error) {
	if m.mineFn == nil {
		return nil, nil
	}
	return m.mineFn(ctx)
}

func (m *mockOrders) All(ctx context.Context) ([]order.Order, error) {
	if m.allFn == nil {
		return nil, nil
	}
	return m.allFn(ctx)
}

func (m *mockOrders) Get(ctx context.Context, id int64) (order.Order, error) {
	if m.getFn == nil {
		return order.Order{}, nil
	}
	return m.getFn(ctx, id)
}

func (m *mockOrders) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	if m.statusFn == nil {
		return nil
	}
	return m.statusFn(ctx, id, status)
}

func currentAs(ident identity.Identity) func(context.Context) (identity.Identity, bool, error) {
	return func(context.Context) (identity.Identity, bool, error) {
		return ident, true, nil
	}
}

func newTestApp(t *testing.T, sess *mockSession, cartPort *mockCart, cat *mockCatalog, ord *mockOrders) *fiber.App {
	t.Helper()
	if sess == nil {
		sess = &mockSession{}
	}
	if cartPort == nil {
		cartPort = &mockCart{}
	}
	if cat == nil {
		cat = &mockCatalog{}
	}
	if ord == nil {
		ord = &mockOrders{}
	}
	app, err := newApp(NewHandlers(sess, cartPort, cat, ord))
	require.NoError(t, err)
	return app
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	return resp
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestHomeRendersProducts(t *testing.T) {
	cat := &mockCatalog{browseFn: func(_ context.Context, keyword, category string) ([]catalog.Product, error) {
		return []catalog.Product{
			{ID: 1, Name: "Widget"},
			{ID: 2, Name: "Gadget"},
		}, nil
	}}
	app := newTestApp(t, nil, nil, cat, nil)

	resp := get(t, app, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "Widget")
	assert.Contains(t, html, "Gadget")
}

func TestNavAnonymousRegion(t *testing.T) {
	app := newTestApp(t, nil, nil, nil, nil)

	html := body(t, get(t, app, "/"))
	assert.Contains(t, html, `href="/login"`)
	assert.Contains(t, html, `href="/register"`)
	assert.NotContains(t, html, "Hello,")
	assert.NotContains(t, html, `href="/admin"`)
}

func TestNavAuthenticatedRegion(t *testing.T) {
	sess := &mockSession{currentFn: currentAs(identity.Identity{Name: "Alice", Role: identity.RoleAdmin})}
	cartPort := &mockCart{snapshotFn: func(context.Context) (cart.SnapshotResponse, error) {
		return cart.SnapshotResponse{ItemCount: 3}, nil
	}}
	app := newTestApp(t, sess, cartPort, nil, nil)

	html := body(t, get(t, app, "/"))
	assert.Contains(t, html, "Hello, Alice")
	assert.Contains(t, html, "Cart (3)")
	assert.Contains(t, html, `href="/admin"`)
	assert.NotContains(t, html, `href="/login"`)
	assert.NotContains(t, html, `href="/register"`)
}

func TestProductNameIsEscaped(t *testing.T) {
	cat := &mockCatalog{browseFn: func(context.Context, string, string) ([]catalog.Product, error) {
		return []catalog.Product{{ID: 1, Name: `<script>alert("x")</script>`}}, nil
	}}
	app := newTestApp(t, nil, nil, cat, nil)

	html := body(t, get(t, app, "/"))
	assert.NotContains(t, html, `<script>alert`)
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestCartAddAnonymousRedirectsToLogin(t *testing.T) {
	cartPort := &mockCart{addFn: func(context.Context, int64, int) error {
		return cart.ErrLoginRequired
	}}
	app := newTestApp(t, nil, cartPort, nil, nil)

	resp := postForm(t, app, "/cart/add", url.Values{"productId": {"1"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestCartAddRedirectsOnlyToLocalPaths(t *testing.T) {
	tests := []struct {
		name    string
		referer string
		want    string
	}{
		{name: "local path", referer: "/products/3", want: "/products/3"},
		{name: "absolute url", referer: "http://evil.example/steal", want: "/"},
		{name: "protocol relative", referer: "//evil.example/steal", want: "/"},
		{name: "missing", referer: "", want: "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil, &mockCart{}, nil, nil)

			form := url.Values{"productId": {"1"}, "quantity": {"2"}}
			req := httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, tt.want, resp.Header.Get("Location"))
		})
	}
}

func TestCartPageRefetchesHeldCollection(t *testing.T) {
	cartPort := &mockCart{}
	app := newTestApp(t, nil, cartPort, nil, nil)

	resp := get(t, app, "/cart")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, cartPort.reloads, "the cart page must show fresh server state")
}

func TestCartSetQuantityRejectsBadInputLocally(t *testing.T) {
	cartPort := &mockCart{}
	app := newTestApp(t, nil, cartPort, nil, nil)

	for _, quantity := range []string{"-3", "abc", ""} {
		resp := postForm(t, app, "/cart/quantity", url.Values{
			"productId": {"1"},
			"quantity":  {quantity},
		})
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/cart", resp.Header.Get("Location"))
	}
	assert.Zero(t, cartPort.mutations, "bad input must never reach the cart")
}

func TestCartSessionExpiredRedirectsHome(t *testing.T) {
	cartPort := &mockCart{addFn: func(context.Context, int64, int) error {
		return gateway.ErrUnauthorized
	}}
	app := newTestApp(t, nil, cartPort, nil, nil)

	resp := postForm(t, app, "/cart/add", url.Values{"productId": {"1"}, "quantity": {"2"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestCheckoutSuccessReloadsCart(t *testing.T) {
	sess := &mockSession{currentFn: currentAs(identity.Identity{Name: "Alice", Role: identity.RoleUser})}
	cartPort := &mockCart{}
	ord := &mockOrders{checkoutFn: func(_ context.Context, address string) (order.Order, error) {
		assert.Equal(t, "1 Main St", address)
		return order.Order{ID: 7}, nil
	}}
	app := newTestApp(t, sess, cartPort, nil, ord)

	resp := postForm(t, app, "/checkout", url.Values{"shippingAddress": {"1 Main St"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/orders/7", resp.Header.Get("Location"))
	assert.Equal(t, 1, cartPort.reloads, "checkout empties the cart server-side")
}

func TestCheckoutMissingAddress(t *testing.T) {
	ord := &mockOrders{checkoutFn: func(context.Context, string) (order.Order, error) {
		return order.Order{}, morders.ErrMissingAddress
	}}
	cartPort := &mockCart{}
	app := newTestApp(t, nil, cartPort, nil, ord)

	resp := postForm(t, app, "/checkout", url.Values{"shippingAddress": {""}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/checkout", resp.Header.Get("Location"))
	assert.Zero(t, cartPort.reloads)
}

func TestAdminGuard(t *testing.T) {
	tests := []struct {
		name         string
		currentFn    func(context.Context) (identity.Identity, bool, error)
		wantStatus   int
		wantLocation string
	}{
		{
			name:         "anonymous",
			currentFn:    nil,
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/",
		},
		{
			name:         "regular user",
			currentFn:    currentAs(identity.Identity{Name: "Alice", Role: identity.RoleUser}),
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/",
		},
		{
			name:       "admin",
			currentFn:  currentAs(identity.Identity{Name: "Root", Role: identity.RoleAdmin}),
			wantStatus: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &mockSession{currentFn: tt.currentFn}
			app := newTestApp(t, sess, nil, nil, nil)

			resp := get(t, app, "/admin/")
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantLocation, resp.Header.Get("Location"))
		})
	}
}

func TestAdminProductSaveRejectsBadPriceLocally(t *testing.T) {
	saveCalled := false
	cat := &mockCatalog{saveFn: func(context.Context, int64, gateway.ProductInput) (catalog.Product, error) {
		saveCalled = true
		return catalog.Product{}, nil
	}}
	sess := &mockSession{currentFn: currentAs(identity.Identity{Name: "Root", Role: identity.RoleAdmin})}
	app := newTestApp(t, sess, nil, cat, nil)

	resp := postForm(t, app, "/admin/products", url.Values{
		"name":  {"Widget"},
		"price": {"not-a-price"},
		"stock": {"3"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.False(t, saveCalled)
}

func TestLoginSuccessReloadsCart(t *testing.T) {
	sess := &mockSession{loginFn: func(_ context.Context, email, password string) (identity.Identity, error) {
		return identity.Identity{Name: "Alice"}, nil
	}}
	cartPort := &mockCart{}
	app := newTestApp(t, sess, cartPort, nil, nil)

	resp := postForm(t, app, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"secret"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Equal(t, 1, cartPort.reloads)
}

func TestLoginFailureStaysOnLogin(t *testing.T) {
	app := newTestApp(t, &mockSession{}, nil, nil, nil)

	resp := postForm(t, app, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestFlashIsShownOnceThenDropped(t *testing.T) {
	app := newTestApp(t, &mockSession{}, nil, nil, nil)

	// A failed login sets a flash cookie on the redirect.
	resp := postForm(t, app, "/login", url.Values{"email": {"a@b.com"}, "password": {"wrong"}})
	var flash *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == flashCookie {
			flash = c
		}
	}
	require.NotNil(t, flash, "failed login must leave a flash cookie")

	// The next page render consumes it.
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(flash)
	resp2, err := app.Test(req)
	require.NoError(t, err)
	assert.Contains(t, body(t, resp2), "Login failed")

	expired := false
	for _, c := range resp2.Cookies() {
		if c.Name == flashCookie && c.Value == "" {
			expired = true
		}
	}
	assert.True(t, expired, "the flash cookie must be expired after display")
}
