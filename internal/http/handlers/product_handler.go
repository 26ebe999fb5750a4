package handlers

import (
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Cart    *services.CartService
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return redirectWith(c, "/", levelError, "This item is no longer available.")
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return redirectWith(c, "/", levelError, "This item is no longer available.")
	}
	data := fiber.Map{"P": p}
	if u := currentUser(c); u != nil {
		inCart, err := h.Cart.Contains(u.ID, p.ID)
		if err != nil {
			return err
		}
		n, err := h.Cart.Count(u.ID)
		if err != nil {
			return err
		}
		data["InCart"], data["CartCount"] = inCart, n
	}
	return render(c, "product", data)
}
