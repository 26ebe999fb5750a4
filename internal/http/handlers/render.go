package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if u := currentUser(c); u != nil {
		data["User"] = u
	}
	if _, ok := data["Flash"]; !ok {
		if f, ok := popFlash(c); ok {
			data["Flash"] = f
		}
	}
	// Pick up the token the CSRF middleware put into Locals, falling back to
	// the cookie so hidden fields are never empty.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// renderStatus renders with an explicit status code.
func renderStatus(c *fiber.Ctx, status int, tmpl string, data fiber.Map) error {
	c.Status(status)
	return render(c, tmpl, data)
}

// formChoices are the select options shared by address and order forms.
func formChoices(data fiber.Map) fiber.Map {
	data["States"] = domain.States
	data["PaymentMethods"] = domain.PaymentMethods
	return data
}
