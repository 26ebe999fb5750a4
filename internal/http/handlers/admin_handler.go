package handlers

import (
	"errors"
	"fmt"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/tealeg/xlsx"
)

type AdminHandler struct {
	Order   *services.OrderService
	Address *services.AddressService
}

// GET /admin
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	ords, err := h.Order.Latest(100)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return err
	}
	return render(c, "admin_orders", fiber.Map{"Orders": ords})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	to, okStatus := domain.ParseOrderStatus(c.FormValue("status"))
	if !ok || !okStatus {
		return redirectWith(c, "/admin", levelError, "Pick an order and a valid status.")
	}
	o, err := h.Order.SetStatus(id, to)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return redirectWith(c, "/admin", levelError, "Order not found.")
		case errors.Is(err, services.ErrInvalid):
			return redirectWith(c, "/admin", levelError, fmt.Sprintf("Order #%d cannot move from %s to %s.", id, o.Status, to))
		}
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
		return err
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": to})
	return redirectWith(c, "/admin", levelSuccess, fmt.Sprintf("Order #%d is now %s.", id, to))
}

// GET /admin/orders/export
func (h *AdminHandler) ExportOrders(c *fiber.Ctx) error {
	ords, err := h.Order.Latest(10000)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}
	header := sheet.AddRow()
	for _, t := range []string{"ID", "User", "Customer", "City", "Product", "Quantity", "Price", "Amount", "Ordered", "Status", "Payment", "Tracking ID"} {
		header.AddCell().SetValue(t)
	}
	for _, o := range ords {
		row := sheet.AddRow()
		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.Username)
		row.AddCell().SetValue(o.CustomerName)
		row.AddCell().SetValue(o.City)
		row.AddCell().SetValue(o.Title)
		row.AddCell().SetValue(o.Quantity)
		row.AddCell().SetValue(o.Price)
		row.AddCell().SetValue(o.Amount)
		row.AddCell().SetValue(o.OrderedDate)
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(o.PaymentMethod.Label())
		row.AddCell().SetValue(o.TrackingID)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	if err := file.Write(c.Response().BodyWriter()); err != nil {
		applog.Error(c, "admin.orders.export.fail", err, nil)
		return err
	}
	applog.Audit(c, "admin.orders.export", map[string]any{"rows": len(ords)})
	return nil
}

// POST /admin/profiles/clear deletes every saved address of every account.
func (h *AdminHandler) ClearProfiles(c *fiber.Ctx) error {
	n, err := h.Address.ClearAll()
	if err != nil {
		applog.Error(c, "admin.profiles.clear.fail", err, nil)
		return err
	}
	applog.Audit(c, "admin.profiles.clear", map[string]any{"deleted": n})
	return redirectWith(c, "/admin", levelSuccess, fmt.Sprintf("Deleted %d address profiles.", n))
}
