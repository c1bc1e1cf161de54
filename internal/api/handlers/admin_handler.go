package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/complaints"
	"github.com/campus-buddy/backend/pkg/logger"
)

const (
	dateLayout = "2006-01-02"
	mimeXLSX   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type AdminHandler struct {
	service *complaints.Service
}

func NewAdminHandler(service *complaints.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// redact hides the submitter of anonymous complaints from triage views.
func redact(list []complaints.Annotated) []complaints.Annotated {
	for i := range list {
		if list[i].IsAnonymous {
			list[i].Email = ""
		}
	}
	return list
}

func (h *AdminHandler) List(c *fiber.Ctx) error {
	list, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return serviceError(c, err, "Failed to load complaints")
	}

	return c.JSON(fiber.Map{"complaints": redact(list)})
}

func parseDay(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, v, time.Local)
}

// Filter takes category, status, from and to query parameters. Dates are
// YYYY-MM-DD and both ends are inclusive.
func (h *AdminHandler) Filter(c *fiber.Ctx) error {
	from, err := parseDay(c.Query("from"))
	if err != nil {
		return badRequest(c, "from must be YYYY-MM-DD")
	}
	to, err := parseDay(c.Query("to"))
	if err != nil {
		return badRequest(c, "to must be YYYY-MM-DD")
	}

	result, err := h.service.Filter(c.UserContext(), complaints.FilterOptions{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		From:     from,
		To:       to,
	})
	if err != nil {
		return serviceError(c, err, "Failed to filter complaints")
	}

	return c.JSON(fiber.Map{
		"complaints":   redact(result.Complaints),
		"summary":      result.Summary,
		"summary_line": result.SummaryLine(),
		"categories":   result.Categories,
	})
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return serviceError(c, err, "Failed to build dashboard")
	}
	return c.JSON(d)
}

func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := complaintID(c)
	if !ok {
		return badRequest(c, "Invalid complaint id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.service.UpdateStatus(c.UserContext(), id, req.Status); err != nil {
		return serviceError(c, err, "Failed to update status")
	}

	return c.JSON(fiber.Map{"message": fmt.Sprintf("Status of complaint %d updated", id)})
}

func (h *AdminHandler) Assign(c *fiber.Ctx) error {
	id, ok := complaintID(c)
	if !ok {
		return badRequest(c, "Invalid complaint id")
	}

	var req struct {
		Staff string `json:"staff"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.service.Assign(c.UserContext(), id, req.Staff); err != nil {
		return serviceError(c, err, "Failed to assign complaint")
	}

	return c.JSON(fiber.Map{"message": fmt.Sprintf("Complaint %d assigned", id)})
}

// Export downloads every complaint as CSV, or as a workbook with
// format=xlsx.
func (h *AdminHandler) Export(c *fiber.Ctx) error {
	var (
		buf         bytes.Buffer
		n           int
		err         error
		contentType string
		ext         string
	)

	switch format := c.Query("format", "csv"); format {
	case "csv":
		n, err = h.service.ExportCSV(c.UserContext(), &buf)
		contentType, ext = "text/csv; charset=utf-8", "csv"
	case "xlsx":
		n, err = h.service.ExportXLSX(c.UserContext(), &buf)
		contentType, ext = mimeXLSX, "xlsx"
	default:
		return badRequest(c, "format must be csv or xlsx")
	}
	if err != nil {
		return serviceError(c, err, "Failed to export complaints")
	}

	logger.Info("Complaints exported", zap.String("format", ext), zap.Int("rows", n))

	c.Attachment(complaints.ExportBaseName + "." + ext)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(buf.Bytes())
}
