package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-buddy/backend/internal/catalog"
)

// CatalogHandler serves the static category tables and FAQ corpus.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

func (h *CatalogHandler) FAQ(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": h.catalog.CategoryFAQs,
		"general":    h.catalog.GeneralFAQs,
	})
}

func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"general":  h.catalog.General,
		"critical": h.catalog.Critical,
	})
}
