package web

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/shopsphere-client/modules/cart"
	"github.com/example/shopsphere-client/modules/catalog"
	"github.com/example/shopsphere-client/modules/gateway"
	"github.com/example/shopsphere-client/modules/orders"
	"github.com/example/shopsphere-client/modules/session"
)

// featuredCount is how many products the landing page highlights.
const featuredCount = 6

// Handlers contains the HTTP handlers for the storefront and admin console.
type Handlers struct {
	session session.Port
	cart    cart.Port
	catalog catalog.Port
	orders  orders.Port
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess session.Port, cartPort cart.Port, cat catalog.Port, ord orders.Port) *Handlers {
	return &Handlers{
		session: sess,
		cart:    cartPort,
		catalog: cat,
		orders:  ord,
	}
}

// render draws a view with the shared navigation state. Exactly one of the
// authenticated or anonymous regions renders, driven by the session
// snapshot taken here for every page.
func (h *Handlers) render(c *fiber.Ctx, name string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	if _, ok := bind["Keyword"]; !ok {
		bind["Keyword"] = ""
	}

	ident, authenticated, err := h.session.Current(c.UserContext())
	if err != nil {
		log.Printf("[web] session lookup failed: %v", err)
	}
	bind["Authenticated"] = authenticated
	bind["Ident"] = ident
	bind["IsAdmin"] = authenticated && ident.IsAdmin()

	count := 0
	if authenticated {
		if snap, err := h.cart.Snapshot(c.UserContext()); err == nil {
			count = snap.ItemCount
		}
	}
	bind["CartCount"] = count

	if _, ok := bind["Flash"]; !ok {
		if f := popFlash(c); f != nil {
			bind["Flash"] = f
		}
	}
	return c.Render(name, bind)
}

// sessionExpired is the shared 401 continuation: the gateway has already
// cleared the credential, so all that is left is the forced navigation to
// the public entry point.
func (h *Handlers) sessionExpired(c *fiber.Ctx) error {
	setFlash(c, FlashWarning, "Your session has expired. Please login again.")
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Home renders the storefront: featured products plus the full (or
// filtered) catalog.
func (h *Handlers) Home(c *fiber.Ctx) error {
	keyword := c.Query("keyword")
	category := c.Query("category")

	bind := fiber.Map{
		"Keyword":  keyword,
		"Category": category,
	}
	products, err := h.catalog.Browse(c.UserContext(), keyword, category)
	if err != nil {
		log.Printf("[web] failed to load products: %v", err)
		bind["Flash"] = &Flash{Level: FlashError, Message: "Failed to load products"}
	}
	bind["Products"] = products
	if keyword == "" && category == "" && len(products) > featuredCount {
		bind["Featured"] = products[:featuredCount]
	} else {
		bind["Featured"] = products
	}

	seen := map[string]bool{}
	var categories []string
	for _, p := range products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	bind["Categories"] = categories
	return h.render(c, "index", bind)
}

// ProductDetail renders one product.
func (h *Handlers) ProductDetail(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	product, err := h.catalog.Get(c.UserContext(), id)
	if err != nil {
		setFlash(c, FlashError, "Failed to load product")
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return h.render(c, "product", fiber.Map{"Product": product})
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(c *fiber.Ctx) error {
	if _, authenticated, _ := h.session.Current(c.UserContext()); authenticated {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return h.render(c, "login", nil)
}

// Login authenticates and, on success, reloads the cart for the new
// identity before sending the user home.
func (h *Handlers) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	_, err := h.session.Login(c.UserContext(), email, password)
	if err != nil {
		if errors.Is(err, session.ErrMissingCredentials) {
			setFlash(c, FlashWarning, "Email and password are required")
		} else {
			setFlash(c, FlashError, "Login failed. Please check your credentials.")
		}
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	if err := h.cart.Reload(c.UserContext()); err != nil {
		log.Printf("[web] cart reload after login failed: %v", err)
	}
	setFlash(c, FlashSuccess, "Login successful!")
	return c.Redirect("/", fiber.StatusSeeOther)
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(c *fiber.Ctx) error {
	return h.render(c, "register", nil)
}

// Register creates an account. Success or failure, the session state is
// untouched.
func (h *Handlers) Register(c *fiber.Ctx) error {
	name := c.FormValue("name")
	email := c.FormValue("email")
	password := c.FormValue("password")

	if err := h.session.Register(c.UserContext(), name, email, password); err != nil {
		if errors.Is(err, session.ErrMissingName) || errors.Is(err, session.ErrMissingCredentials) {
			setFlash(c, FlashWarning, "All fields are required")
		} else {
			setFlash(c, FlashError, "Registration failed. Please try again.")
		}
		return c.Redirect("/register", fiber.StatusSeeOther)
	}
	setFlash(c, FlashSuccess, "Registration successful! Please login.")
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// Logout clears the session, forces the held cart empty, and returns to the
// public entry point.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if err := h.session.Logout(c.UserContext()); err != nil {
		log.Printf("[web] logout failed: %v", err)
	}
	if err := h.cart.Reload(c.UserContext()); err != nil {
		log.Printf("[web] cart reload after logout failed: %v", err)
	}
	setFlash(c, FlashInfo, "Logged out successfully")
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Cart renders the cart page.
func (h *Handlers) Cart(c *fiber.Ctx) error {
	// Fetch fresh state so changes made elsewhere show up on page load.
	if err := h.cart.Reload(c.UserContext()); err != nil {
		log.Printf("[web] cart reload failed: %v", err)
	}
	snap, err := h.cart.Snapshot(c.UserContext())
	if err != nil {
		log.Printf("[web] cart snapshot failed: %v", err)
	}
	return h.render(c, "cart", fiber.Map{
		"Lines":     snap.Lines,
		"ItemCount": snap.ItemCount,
		"Total":     snap.Total,
	})
}

// CartAdd puts a product in the cart.
func (h *Handlers) CartAdd(c *fiber.Ctx) error {
	back := backPath(c)

	productID, err := strconv.ParseInt(c.FormValue("productId"), 10, 64)
	if err != nil {
		setFlash(c, FlashWarning, "Invalid product")
		return c.Redirect(back, fiber.StatusSeeOther)
	}
	quantity := 1
	if raw := c.FormValue("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil {
			setFlash(c, FlashWarning, "Invalid quantity")
			return c.Redirect(back, fiber.StatusSeeOther)
		}
	}

	if err := h.cart.Add(c.UserContext(), productID, quantity); err != nil {
		switch {
		case errors.Is(err, cart.ErrLoginRequired):
			setFlash(c, FlashWarning, "Please login to add items to cart")
			return c.Redirect("/login", fiber.StatusSeeOther)
		case errors.Is(err, cart.ErrInvalidQuantity):
			setFlash(c, FlashWarning, "Invalid quantity")
			return c.Redirect(back, fiber.StatusSeeOther)
		case errors.Is(err, gateway.ErrUnauthorized):
			return h.sessionExpired(c)
		default:
			setFlash(c, FlashError, "Failed to add item to cart")
			return c.Redirect(back, fiber.StatusSeeOther)
		}
	}
	setFlash(c, FlashSuccess, "Item added to cart!")
	return c.Redirect(back, fiber.StatusSeeOther)
}

// CartSetQuantity changes a line's quantity; zero removes the line.
func (h *Handlers) CartSetQuantity(c *fiber.Ctx) error {
	productID, err := strconv.ParseInt(c.FormValue("productId"), 10, 64)
	if err != nil {
		setFlash(c, FlashWarning, "Invalid product")
		return c.Redirect("/cart", fiber.StatusSeeOther)
	}
	quantity, err := strconv.Atoi(c.FormValue("quantity"))
	if err != nil || quantity < 0 {
		// Rejected locally: no network call for non-numeric or negative
		// input.
		setFlash(c, FlashWarning, "Invalid quantity")
		return c.Redirect("/cart", fiber.StatusSeeOther)
	}

	if err := h.cart.SetQuantity(c.UserContext(), productID, quantity); err != nil {
		switch {
		case errors.Is(err, cart.ErrLoginRequired):
			setFlash(c, FlashWarning, "Please login to manage your cart")
			return c.Redirect("/login", fiber.StatusSeeOther)
		case errors.Is(err, gateway.ErrUnauthorized):
			return h.sessionExpired(c)
		default:
			setFlash(c, FlashError, "Failed to update cart item")
		}
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

// CartRemove drops a line.
func (h *Handlers) CartRemove(c *fiber.Ctx) error {
	productID, err := paramID(c)
	if err != nil {
		return c.Redirect("/cart", fiber.StatusSeeOther)
	}
	if err := h.cart.Remove(c.UserContext(), productID); err != nil {
		switch {
		case errors.Is(err, cart.ErrLoginRequired):
			return c.Redirect("/login", fiber.StatusSeeOther)
		case errors.Is(err, gateway.ErrUnauthorized):
			return h.sessionExpired(c)
		default:
			setFlash(c, FlashError, "Failed to remove item from cart")
			return c.Redirect("/cart", fiber.StatusSeeOther)
		}
	}
	setFlash(c, FlashInfo, "Item removed from cart")
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

// CartClear empties the cart.
func (h *Handlers) CartClear(c *fiber.Ctx) error {
	if err := h.cart.Clear(c.UserContext()); err != nil {
		switch {
		case errors.Is(err, cart.ErrLoginRequired):
			return c.Redirect("/login", fiber.StatusSeeOther)
		case errors.Is(err, gateway.ErrUnauthorized):
			return h.sessionExpired(c)
		default:
			setFlash(c, FlashError, "Failed to clear cart")
			return c.Redirect("/cart", fiber.StatusSeeOther)
		}
	}
	setFlash(c, FlashInfo, "Cart cleared")
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

// CheckoutForm renders the checkout page with the current totals.
func (h *Handlers) CheckoutForm(c *fiber.Ctx) error {
	if _, authenticated, _ := h.session.Current(c.UserContext()); !authenticated {
		setFlash(c, FlashWarning, "Please login to proceed with checkout")
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	snap, err := h.cart.Snapshot(c.UserContext())
	if err != nil {
		log.Printf("[web] cart snapshot failed: %v", err)
	}
	return h.render(c, "checkout", fiber.Map{
		"Lines": snap.Lines,
		"Total": snap.Total,
	})
}

// Checkout places the order and reloads the now-empty cart.
func (h *Handlers) Checkout(c *fiber.Ctx) error {
	address := c.FormValue("shippingAddress")

	placed, err := h.orders.Checkout(c.UserContext(), address)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrMissingAddress):
			setFlash(c, FlashWarning, "Please enter a shipping address")
			return c.Redirect("/checkout", fiber.StatusSeeOther)
		case errors.Is(err, gateway.ErrUnauthorized):
			return h.sessionExpired(c)
		default:
			setFlash(c, FlashError, "Failed to place order. Please try again.")
			return c.Redirect("/checkout", fiber.StatusSeeOther)
		}
	}

	if err := h.cart.Reload(c.UserContext()); err != nil {
		log.Printf("[web] cart reload after checkout failed: %v", err)
	}
	setFlash(c, FlashSuccess, "Order placed successfully!")
	return c.Redirect("/orders/"+strconv.FormatInt(placed.ID, 10), fiber.StatusSeeOther)
}

// MyOrders lists the user's own orders.
func (h *Handlers) MyOrders(c *fiber.Ctx) error {
	if _, authenticated, _ := h.session.Current(c.UserContext()); !authenticated {
		setFlash(c, FlashWarning, "Please login to view your orders")
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	list, err := h.orders.Mine(c.UserContext())
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return h.sessionExpired(c)
		}
		setFlash(c, FlashError, "Failed to load orders")
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return h.render(c, "orders", fiber.Map{"Orders": list})
}

// OrderDetail renders one of the user's orders.
func (h *Handlers) OrderDetail(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Redirect("/orders", fiber.StatusSeeOther)
	}
	found, err := h.orders.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return h.sessionExpired(c)
		}
		setFlash(c, FlashError, "Failed to load order")
		return c.Redirect("/orders", fiber.StatusSeeOther)
	}
	return h.render(c, "order", fiber.Map{"Order": found})
}

// paramID parses the :id route parameter.
func paramID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// backPath picks the redirect target after a cart mutation. Only
// same-origin paths are honoured; anything else falls back to the
// storefront root so the Referer header cannot send the browser
// off-site.
func backPath(c *fiber.Ctx) string {
	ref := c.Get("Referer")
	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return ref
	}
	return "/"
}
