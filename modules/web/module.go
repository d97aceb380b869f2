package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/example/shopsphere-client/modules/cart"
	"github.com/example/shopsphere-client/modules/catalog"
	"github.com/example/shopsphere-client/modules/orders"
	"github.com/example/shopsphere-client/modules/session"
)

//go:embed views
var viewsFS embed.FS

// Config holds the web settings.
type Config struct {
	// Listen is the local address the storefront is served on.
	Listen string
}

// Module is the HTTP surface: the storefront, cart, checkout and admin
// console rendered server-side. Templates escape every interpolated value,
// so user-controlled fields (product names, shipping addresses) are inert
// in the markup.
type Module struct {
	cfg Config
	app *fiber.App

	sessionPort session.Port
	cartPort    cart.Port
	catalogPort catalog.Port
	ordersPort  orders.Port
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new web module.
func NewModule(cfg Config) *Module {
	return &Module{cfg: cfg}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "web"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"session", "cart", "catalog", "orders"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "session":
		m.sessionPort = session.NewAdapter(container)
	case "cart":
		m.cartPort = cart.NewAdapter(container)
	case "catalog":
		m.catalogPort = catalog.NewAdapter(container)
	case "orders":
		m.ordersPort = orders.NewAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *Module) Start(_ context.Context) error {
	if m.sessionPort == nil || m.cartPort == nil || m.catalogPort == nil || m.ordersPort == nil {
		return fmt.Errorf("web: dependencies not set")
	}

	app, err := newApp(NewHandlers(m.sessionPort, m.cartPort, m.catalogPort, m.ordersPort))
	if err != nil {
		return err
	}
	m.app = app

	go func() {
		if err := m.app.Listen(m.cfg.Listen); err != nil {
			log.Printf("[web] HTTP server error: %v", err)
		}
	}()

	log.Printf("[web] Storefront started on %s", m.cfg.Listen)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *Module) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[web] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"listen": m.cfg.Listen,
		},
	}
}

// newApp builds the Fiber application with the embedded views and the full
// route table.
func newApp(h *Handlers) (*fiber.App, error) {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, fmt.Errorf("web: views subtree: %w", err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Views:                 engine,
		ViewsLayout:           "layouts/main",
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	setupRoutes(app, h)
	return app, nil
}

// setupRoutes configures all routes.
func setupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "web",
		})
	})

	app.Get("/", h.Home)
	app.Get("/products/:id", h.ProductDetail)

	app.Get("/login", h.LoginForm)
	app.Post("/login", h.Login)
	app.Get("/register", h.RegisterForm)
	app.Post("/register", h.Register)
	app.Post("/logout", h.Logout)

	app.Get("/cart", h.Cart)
	app.Post("/cart/add", h.CartAdd)
	app.Post("/cart/quantity", h.CartSetQuantity)
	app.Post("/cart/remove/:id", h.CartRemove)
	app.Post("/cart/clear", h.CartClear)

	app.Get("/checkout", h.CheckoutForm)
	app.Post("/checkout", h.Checkout)
	app.Get("/orders", h.MyOrders)
	app.Get("/orders/:id", h.OrderDetail)

	// The guard mirrors the session store's navigation rule: anonymous or
	// non-admin visitors are sent back to the public entry point.
	admin := app.Group("/admin", h.RequireAdmin)
	admin.Get("/", h.AdminProducts)
	admin.Get("/products/new", h.AdminProductForm)
	admin.Get("/products/:id/edit", h.AdminProductForm)
	admin.Post("/products", h.AdminProductSave)
	admin.Post("/products/:id", h.AdminProductSave)
	admin.Post("/products/:id/delete", h.AdminProductDelete)
	admin.Get("/orders", h.AdminOrders)
	admin.Get("/orders/:id", h.AdminOrderDetail)
	admin.Post("/orders/:id/status", h.AdminOrderStatus)
}

// errorHandler renders unexpected errors without leaking internals.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("[web] handler error: %v", err)
	return c.Status(code).SendString("Something went wrong")
}
