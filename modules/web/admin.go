package web

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/shopsphere-client/domain/catalog"
	"github.com/example/shopsphere-client/domain/order"
	mcatalog "github.com/example/shopsphere-client/modules/catalog"
	"github.com/example/shopsphere-client/modules/gateway"
	morders "github.com/example/shopsphere-client/modules/orders"
)

// RequireAdmin guards the admin console. Anonymous users and regular users
// are both bounced to the storefront; the backend enforces the same rule on
// every admin call regardless.
func (h *Handlers) RequireAdmin(c *fiber.Ctx) error {
	ident, authenticated, err := h.session.Current(c.UserContext())
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return h.sessionExpired(c)
		}
		setFlash(c, FlashError, "Something went wrong")
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	if !authenticated || !ident.IsAdmin() {
		setFlash(c, FlashError, "Access denied. Admin privileges required.")
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.Next()
}

// AdminProducts lists all products for management.
func (h *Handlers) AdminProducts(c *fiber.Ctx) error {
	products, err := h.catalog.Browse(c.UserContext(), "", "")
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return h.sessionExpired(c)
		}
		setFlash(c, FlashError, "Failed to load products")
	}
	return h.render(c, "admin/products", fiber.Map{"Products": products})
}

// AdminProductForm renders the create or edit form. With an :id parameter
// the form is prefilled from the catalog.
func (h *Handlers) AdminProductForm(c *fiber.Ctx) error {
	bind := fiber.Map{"Product": catalog.Product{}}
	if c.Params("id") != "" {
		id, err := paramID(c)
		if err != nil {
			return c.Redirect("/admin", fiber.StatusSeeOther)
		}
		product, err := h.catalog.Get(c.UserContext(), id)
		if err != nil {
			setFlash(c, FlashError, "Failed to load product")
			return c.Redirect("/admin", fiber.StatusSeeOther)
		}
		bind["Product"] = product
		bind["Editing"] = true
	}
	return h.render(c, "admin/product_form", bind)
}

// AdminProductSave creates or updates a product from the submitted form.
// Price and stock are validated locally before any call goes out.
func (h *Handlers) AdminProductSave(c *fiber.Ctx) error {
	var id int64
	back := "/admin/products/new"
	if c.Params("id") != "" {
		var err error
		id, err = paramID(c)
		if err != nil {
			return c.Redirect("/admin", fiber.StatusSeeOther)
		}
		back = "/admin/products/" + c.Params("id") + "/edit"
	}

	price, err := decimal.NewFromString(c.FormValue("price"))
	if err != nil || price.IsNegative() {
		setFlash(c, FlashWarning, "Invalid price")
		return c.Redirect(back, fiber.StatusSeeOther)
	}
	stock, err := strconv.Atoi(c.FormValue("stock"))
	if err != nil || stock < 0 {
		setFlash(c, FlashWarning, "Invalid stock")
		return c.Redirect(back, fiber.StatusSeeOther)
	}

	in := gateway.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       price,
		Stock:       stock,
		Category:    c.FormValue("category"),
		ImageURL:    c.FormValue("imageUrl"),
	}

	if _, err := h.catalog.Save(c.UserContext(), id, in); err != nil {
		switch {
		case errors.Is(err, mcatalog.ErrMissingName):
			setFlash(c, FlashWarning, "Product name is required")
			return c.Redirect(back, fiber.StatusSeeOther)
		case errors.Is(err, gateway.ErrUnauthorized):
			return h.sessionExpired(c)
		default:
			setFlash(c, FlashError, "Failed to save product")
			return c.Redirect(back, fiber.StatusSeeOther)
		}
	}
	if id == 0 {
		setFlash(c, FlashSuccess, "Product created successfully!")
	} else {
		setFlash(c, FlashSuccess, "Product updated successfully!")
	}
	return c.Redirect("/admin", fiber.StatusSeeOther)
}

// AdminProductDelete removes a product. On failure the listing is simply
// refetched unchanged.
func (h *Handlers) AdminProductDelete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Redirect("/admin", fiber.StatusSeeOther)
	}
	if err := h.catalog.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return h.sessionExpired(c)
		}
		setFlash(c, FlashError, "Failed to delete product")
		return c.Redirect("/admin", fiber.StatusSeeOther)
	}
	setFlash(c, FlashSuccess, "Product deleted successfully!")
	return c.Redirect("/admin", fiber.StatusSeeOther)
}

// AdminOrders lists every order in the system.
func (h *Handlers) AdminOrders(c *fiber.Ctx) error {
	list, err := h.orders.All(c.UserContext())
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return h.sessionExpired(c)
		}
		setFlash(c, FlashError, "Failed to load orders")
	}
	return h.render(c, "admin/orders", fiber.Map{
		"Orders":   list,
		"Statuses": order.AllStatuses,
	})
}

// AdminOrderDetail renders one order with its status controls.
func (h *Handlers) AdminOrderDetail(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Redirect("/admin/orders", fiber.StatusSeeOther)
	}
	found, err := h.orders.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return h.sessionExpired(c)
		}
		setFlash(c, FlashError, "Failed to load order")
		return c.Redirect("/admin/orders", fiber.StatusSeeOther)
	}
	return h.render(c, "admin/order", fiber.Map{
		"Order":    found,
		"Statuses": order.AllStatuses,
	})
}

// AdminOrderStatus moves an order to a new status.
func (h *Handlers) AdminOrderStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Redirect("/admin/orders", fiber.StatusSeeOther)
	}
	status := order.Status(c.FormValue("status"))

	if err := h.orders.UpdateStatus(c.UserContext(), id, status); err != nil {
		switch {
		case errors.Is(err, morders.ErrInvalidStatus):
			setFlash(c, FlashWarning, "Invalid order status")
		case errors.Is(err, gateway.ErrUnauthorized):
			return h.sessionExpired(c)
		default:
			setFlash(c, FlashError, "Failed to update order status")
		}
		return c.Redirect("/admin/orders", fiber.StatusSeeOther)
	}
	setFlash(c, FlashSuccess, "Order status updated successfully!")
	return c.Redirect("/admin/orders", fiber.StatusSeeOther)
}
