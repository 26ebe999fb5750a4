package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AddressHandler struct {
	Address *services.AddressService
}

func (h *AddressHandler) Page(c *fiber.Ctx) error {
	return h.page(c, fiber.StatusOK, validate.AddressForm{}, nil)
}

func (h *AddressHandler) page(c *fiber.Ctx, status int, form validate.AddressForm, errs map[string]string) error {
	u := currentUser(c)
	addrs, err := h.Address.List(u.ID)
	if err != nil {
		return err
	}
	data := formChoices(fiber.Map{"Addresses": addrs, "Form": form})
	if errs != nil {
		data["Errors"] = errs
		data["Flash"] = Flash{Level: levelError, Message: "Please correct the errors below."}
	}
	return renderStatus(c, status, "address", data)
}

// Create saves a new address profile for the logged-in account.
func (h *AddressHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	var form validate.AddressForm
	if err := c.BodyParser(&form); err != nil {
		return h.page(c, fiber.StatusBadRequest, form, map[string]string{"_": "Could not read the form."})
	}
	cust, err := form.Customer(u.ID)
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"form": "address"})
		return h.page(c, fiber.StatusBadRequest, form, validate.FieldErrors(err))
	}
	id, err := h.Address.Create(cust)
	if err != nil {
		applog.Error(c, "address.create.fail", err, nil)
		return err
	}
	applog.Info(c, "address.create", map[string]any{"customer_id": id})
	return redirectWith(c, "/address", levelSuccess, "Congratulations! Profile updated successfully.")
}
