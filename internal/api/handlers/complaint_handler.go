package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-buddy/backend/internal/complaints"
	authmw "github.com/campus-buddy/backend/internal/middleware/auth"
)

// ComplaintHandler serves the student side of the portal. Every route sits
// behind authmw.RequireRole, so the caller's email comes from the token.
type ComplaintHandler struct {
	service       *complaints.Service
	maxAttachment int
}

func NewComplaintHandler(service *complaints.Service, maxAttachment int) *ComplaintHandler {
	return &ComplaintHandler{
		service:       service,
		maxAttachment: maxAttachment,
	}
}

func callerEmail(c *fiber.Ctx) (string, bool) {
	claims, ok := authmw.Claims(c)
	if !ok || claims.Email == "" {
		return "", false
	}
	return claims.Email, true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Sign in required"})
}

type submitBody struct {
	Type        string `json:"type" form:"type"`
	Category    string `json:"category" form:"category"`
	Subcategory string `json:"subcategory" form:"subcategory"`
	Description string `json:"description" form:"description"`
	Anonymous   bool   `json:"anonymous" form:"anonymous"`
}

// Submit accepts JSON, or a multipart form with an optional "attachment"
// file.
func (h *ComplaintHandler) Submit(c *fiber.Ctx) error {
	email, ok := callerEmail(c)
	if !ok {
		return unauthorized(c)
	}

	var body submitBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := complaints.SubmitRequest{
		Type:        body.Type,
		Category:    body.Category,
		Subcategory: body.Subcategory,
		Description: body.Description,
		Anonymous:   body.Anonymous,
		Email:       email,
	}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		name, data, problem := h.readAttachment(c)
		if problem != "" {
			return badRequest(c, problem)
		}
		req.AttachmentName, req.Attachment = name, data
	}

	complaint, err := h.service.Submit(c.UserContext(), req)
	if err != nil {
		return serviceError(c, err, "Failed to submit complaint")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Complaint submitted successfully!",
		"complaint": complaint,
	})
}

// readAttachment returns an empty name and nil data when no file was sent.
// A non-empty problem is a message for the client.
func (h *ComplaintHandler) readAttachment(c *fiber.Ctx) (name string, data []byte, problem string) {
	fh, err := c.FormFile("attachment")
	if err != nil {
		return "", nil, ""
	}
	if h.maxAttachment > 0 && fh.Size > int64(h.maxAttachment) {
		return "", nil, "Attachment is too large"
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, "Could not read attachment"
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		return "", nil, "Could not read attachment"
	}
	return fh.Filename, data, ""
}

func (h *ComplaintHandler) Mine(c *fiber.Ctx) error {
	email, ok := callerEmail(c)
	if !ok {
		return unauthorized(c)
	}

	list, err := h.service.ListByEmail(c.UserContext(), email)
	if err != nil {
		return serviceError(c, err, "Failed to load complaints")
	}

	return c.JSON(fiber.Map{"complaints": list})
}

func (h *ComplaintHandler) Edit(c *fiber.Ctx) error {
	email, ok := callerEmail(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := complaintID(c)
	if !ok {
		return badRequest(c, "Invalid complaint id")
	}

	var req struct {
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	complaint, err := h.service.Edit(c.UserContext(), id, email, req.Description)
	if err != nil {
		return serviceError(c, err, "Failed to update complaint")
	}

	return c.JSON(fiber.Map{
		"message":   "Complaint updated",
		"complaint": complaint,
	})
}

func (h *ComplaintHandler) Withdraw(c *fiber.Ctx) error {
	email, ok := callerEmail(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := complaintID(c)
	if !ok {
		return badRequest(c, "Invalid complaint id")
	}

	if err := h.service.Withdraw(c.UserContext(), id, email); err != nil {
		return serviceError(c, err, "Failed to delete complaint")
	}

	return c.JSON(fiber.Map{"message": "Complaint deleted"})
}

func (h *ComplaintHandler) Notifications(c *fiber.Ctx) error {
	email, ok := callerEmail(c)
	if !ok {
		return unauthorized(c)
	}

	notes, err := h.service.Notifications(c.UserContext(), email)
	if err != nil {
		return serviceError(c, err, "Failed to load notifications")
	}

	return c.JSON(fiber.Map{"notifications": notes})
}
