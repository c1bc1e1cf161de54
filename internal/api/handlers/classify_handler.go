package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-buddy/backend/internal/catalog"
	"github.com/campus-buddy/backend/internal/middleware/validation"
	"github.com/campus-buddy/backend/internal/nlp"
)

type ClassifyHandler struct {
	analyzer *nlp.Analyzer
	catalog  *catalog.Catalog
}

func NewClassifyHandler(analyzer *nlp.Analyzer, cat *catalog.Catalog) *ClassifyHandler {
	return &ClassifyHandler{
		analyzer: analyzer,
		catalog:  cat,
	}
}

// Classify returns the advisory analysis of free text.
func (h *ClassifyHandler) Classify(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if body, ok := c.Locals(validation.SanitizedBodyKey).(map[string]interface{}); ok {
		if text, ok := body["text"].(string); ok {
			req.Text = text
		}
	}

	return c.JSON(h.analyzer.Classify(req.Text, h.catalog.All()))
}
