package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	u := currentUser(c)
	cv, err := h.Cart.View(u.ID)
	if err != nil {
		applog.Error(c, "cart.load", err, nil)
		return err
	}
	return render(c, "cart", fiber.Map{"Cart": cv})
}

// Add puts one unit of prod_id into the cart and shows the cart.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	u := currentUser(c)
	pid, ok := validate.ID(c.FormValue("prod_id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "prod_id"})
		return redirectWith(c, "/", levelError, "That product is not available.")
	}
	if err := h.Cart.Add(u.ID, pid); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return redirectWith(c, "/", levelError, "That product is not available.")
		}
		return err
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": pid})
	return redirectWith(c, "/cart", levelSuccess, "Added to your cart.")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return redirectWith(c, "/cart", levelError, "Cart item not found.")
	}
	if err := h.Cart.Remove(u.ID, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			applog.Security(c, "cart.remove.denied", map[string]any{"cart_id": id})
			return redirectWith(c, "/cart", levelError, "Cart item not found.")
		}
		return err
	}
	return redirectWith(c, "/cart", levelSuccess, "Item removed from your cart.")
}

// Update is the no-script fallback of the incremental update: POST
// /cart/update/:id/:action then back to the cart page.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	u := currentUser(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return redirectWith(c, "/cart", levelError, "Cart item not found.")
	}
	if _, err := h.Cart.Adjust(u.ID, id, c.Params("action")); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			applog.Security(c, "cart.update.denied", map[string]any{"cart_id": id})
			return redirectWith(c, "/cart", levelError, "Cart item not found.")
		case errors.Is(err, services.ErrInvalid):
			return redirectWith(c, "/cart", levelError, "Unknown cart action.")
		}
		return err
	}
	return c.Redirect("/cart")
}

type cartUpdateReq struct {
	CartID json.Number `json:"cart_id" form:"cart_id"`
	Action string      `json:"action" form:"action"`
}

// APIUpdate applies inc/dec/remove to one line and answers with the new
// line quantity and cart totals as JSON.
func (h *CartHandler) APIUpdate(c *fiber.Ctx) error {
	u := currentUser(c)
	var req cartUpdateReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}
	id, ok := validate.ID(req.CartID.String())
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid cart_id"})
	}
	res, err := h.Cart.Adjust(u.ID, id, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			applog.Security(c, "cart.update.denied", map[string]any{"cart_id": id})
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cart item not found"})
		case errors.Is(err, services.ErrInvalid):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid action"})
		}
		applog.Error(c, "cart.update.fail", err, map[string]any{"cart_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"cart_id":    res.LineID,
		"quantity":   res.Quantity,
		"line_total": res.LineTotal,
		"amount":     res.Amount,
		"shipping":   res.Shipping,
		"total":      res.Total,
	})
}
