package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Cart    *services.CartService
	Order   *services.OrderService
	Address *services.AddressService
	Catalog *services.CatalogService
}

// BuyForm shows the single-product purchase form for ?prod_id=.
func (h *OrderHandler) BuyForm(c *fiber.Ctx) error {
	u := currentUser(c)
	pid, ok := validate.ID(c.Query("prod_id"))
	if !ok {
		return redirectWith(c, "/", levelError, "This item is no longer available.")
	}
	p, err := h.Catalog.GetProduct(pid)
	if err != nil {
		return redirectWith(c, "/", levelError, "This item is no longer available.")
	}
	addrs, err := h.Address.List(u.ID)
	if err != nil {
		return err
	}
	return render(c, "buynow", formChoices(fiber.Map{
		"P":         p,
		"Addresses": addrs,
		"Quantity":  1,
		"Form":      validate.AddressForm{},
	}))
}

// BuyNow places one order for one product, either to a saved address
// (custid) or to an address entered in the same form.
func (h *OrderHandler) BuyNow(c *fiber.Ctx) error {
	u := currentUser(c)
	pid, ok := validate.ID(c.FormValue("prod_id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "prod_id"})
		return redirectWith(c, "/", levelError, "This item is no longer available.")
	}
	back := "/buy?prod_id=" + strconv.FormatInt(pid, 10)

	req := services.BuyNow{
		ProductID:     pid,
		Quantity:      validate.Qty(c.FormValue("quantity")),
		PaymentMethod: domain.ParsePaymentMethod(c.FormValue("payment_method")),
	}

	var form validate.AddressForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWith(c, back, levelError, "Could not read the form.")
	}
	if cid, ok := validate.ID(c.FormValue("custid")); ok {
		req.CustomerID = cid
	} else if form.Filled() {
		addr, err := form.Customer(u.ID)
		if err != nil {
			return h.rerenderBuy(c, pid, req.Quantity, form, validate.FieldErrors(err))
		}
		req.NewAddress = &addr
	}

	o, err := h.Order.PlaceBuyNow(u.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			applog.Security(c, "order.buy.fail", map[string]any{"product_id": pid, "error": err.Error()})
			return redirectWith(c, back, levelError, "That product or address is not available.")
		case errors.Is(err, services.ErrInvalid):
			return redirectWith(c, back, levelError, "Choose a saved address or enter a new one.")
		}
		applog.Error(c, "order.buy.fail", err, map[string]any{"product_id": pid})
		return err
	}
	applog.Audit(c, "order.buy", map[string]any{
		"order_id":    o.ID,
		"product_id":  o.ProductID,
		"quantity":    o.Quantity,
		"customer_id": o.CustomerID,
		"tracking_id": o.TrackingID,
	})
	return renderPlaced(c, []domain.Order{o})
}

func (h *OrderHandler) rerenderBuy(c *fiber.Ctx, pid int64, qty int, form validate.AddressForm, errs map[string]string) error {
	u := currentUser(c)
	p, err := h.Catalog.GetProduct(pid)
	if err != nil {
		return redirectWith(c, "/", levelError, "This item is no longer available.")
	}
	addrs, err := h.Address.List(u.ID)
	if err != nil {
		return err
	}
	return renderStatus(c, fiber.StatusBadRequest, "buynow", formChoices(fiber.Map{
		"P":         p,
		"Addresses": addrs,
		"Quantity":  qty,
		"Form":      form,
		"Errors":    errs,
		"Flash":     Flash{Level: levelError, Message: "Please correct the address below."},
	}))
}

func (h *OrderHandler) CheckoutForm(c *fiber.Ctx) error {
	u := currentUser(c)
	cv, err := h.Cart.View(u.ID)
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return err
	}
	if cv.Empty() {
		return redirectWith(c, "/cart", levelInfo, "Your cart is empty.")
	}
	addrs, err := h.Address.List(u.ID)
	if err != nil {
		return err
	}
	return render(c, "checkout", formChoices(fiber.Map{"Cart": cv, "Addresses": addrs}))
}

// Checkout turns the whole cart into orders to the chosen saved address.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	u := currentUser(c)
	cid, _ := validate.ID(c.FormValue("custid"))
	pm := domain.ParsePaymentMethod(c.FormValue("payment_method"))

	orders, err := h.Order.Checkout(u.ID, cid, pm)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			return redirectWith(c, "/cart", levelInfo, "Your cart is empty.")
		case errors.Is(err, services.ErrInvalid):
			return redirectWith(c, "/checkout", levelError, "Choose a shipping address.")
		case errors.Is(err, services.ErrNotFound):
			applog.Security(c, "order.checkout.denied", map[string]any{"customer_id": cid})
			return redirectWith(c, "/checkout", levelError, "Choose one of your saved addresses.")
		}
		applog.Error(c, "order.checkout.fail", err, nil)
		return err
	}
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	applog.Audit(c, "order.checkout", map[string]any{"order_ids": ids, "customer_id": cid, "payment_method": pm})
	return renderPlaced(c, orders)
}

func renderPlaced(c *fiber.Ctx, orders []domain.Order) error {
	msg := "Your order has been placed."
	if len(orders) > 1 {
		msg = fmt.Sprintf("Your %d orders have been placed.", len(orders))
	}
	return render(c, "order_placed", fiber.Map{
		"Orders": orders,
		"Flash":  Flash{Level: levelSuccess, Message: msg},
	})
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	u := currentUser(c)
	orders, err := h.Order.ListForUser(u.ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return err
	}
	return render(c, "orders", fiber.Map{"Orders": orders})
}

// Track looks orders up by tracking id (query or form). Anyone may track.
func (h *OrderHandler) Track(c *fiber.Ctx) error {
	raw := c.FormValue("tracking_id")
	if raw == "" {
		raw = c.Query("tracking_id")
	}
	if raw == "" {
		return render(c, "trackorder", fiber.Map{})
	}
	data := fiber.Map{"TrackingID": raw}
	tid, ok := validate.TrackingID(raw)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "tracking_id"})
		data["Flash"] = Flash{Level: levelInfo, Message: "No orders found for that tracking ID."}
		return render(c, "trackorder", data)
	}
	orders, err := h.Order.Track(tid)
	if err != nil {
		return err
	}
	data["Orders"] = orders
	if len(orders) == 0 {
		data["Flash"] = Flash{Level: levelInfo, Message: "No orders found for that tracking ID."}
	}
	return render(c, "trackorder", data)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	return h.move(c, "cancel", h.Order.Cancel)
}

func (h *OrderHandler) Return(c *fiber.Ctx) error {
	return h.move(c, "return", h.Order.Return)
}

func (h *OrderHandler) move(c *fiber.Ctx, verb string, fn func(userID, orderID int64) (domain.Order, error)) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return redirectWith(c, "/orders", levelError, "Order not found.")
	}
	o, err := fn(u.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return redirectWith(c, "/orders", levelError, "Order not found.")
		case errors.Is(err, services.ErrForbidden):
			applog.Security(c, "order."+verb+".denied", map[string]any{"order_id": id})
			return redirectWith(c, "/orders", levelError, "You can't change that order.")
		case errors.Is(err, services.ErrNoOp):
			return redirectWith(c, "/orders", levelInfo, fmt.Sprintf("Order #%d is already %s.", o.ID, o.Status))
		}
		applog.Error(c, "order."+verb+".fail", err, map[string]any{"order_id": id})
		return err
	}
	applog.Audit(c, "order."+verb, map[string]any{"order_id": o.ID, "status": o.Status})
	return redirectWith(c, "/orders", levelSuccess, fmt.Sprintf("Order #%d is now %s.", o.ID, o.Status))
}
