package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// Section is one strip on the home page.
type Section struct {
	Category domain.Category
	Products []domain.Product
}

func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	byCat, err := h.Catalog.Home()
	if err != nil {
		return err
	}
	sections := make([]Section, 0, len(domain.Categories))
	for _, cat := range domain.Categories {
		sections = append(sections, Section{Category: cat, Products: byCat[cat]})
	}
	counts, err := h.Catalog.CategoryCounts()
	if err != nil {
		return err
	}
	return render(c, "home", fiber.Map{"Sections": sections, "Counts": counts})
}

// List serves /<slug>/:data? for one category.
func (h *CatalogHandler) List(cat domain.Category) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l, err := h.Catalog.ListCategory(cat, c.Params("data"))
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return renderStatus(c, fiber.StatusNotFound, "notfound", fiber.Map{"Message": "Category not found"})
			}
			return err
		}
		return render(c, "category", fiber.Map{
			"Listing": l,
			"Slug":    cat.Slug(),
			"Band":    services.PriceBands[cat],
		})
	}
}

func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	raw := c.Query("q")
	q, ok := validate.Q(raw)
	if !ok {
		if raw != "" {
			log.Security(c, "validation.fail", map[string]any{"field": "q"})
		}
		return render(c, "search", fiber.Map{"Q": raw, "Results": []domain.Product{}})
	}
	res, err := h.Catalog.Search(q)
	if err != nil {
		return err
	}
	return render(c, "search", fiber.Map{"Q": q, "Results": res})
}
