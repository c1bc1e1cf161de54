package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/chatbot"
	"github.com/campus-buddy/backend/internal/middleware/validation"
	"github.com/campus-buddy/backend/pkg/logger"
)

type ChatHandler struct {
	dispatcher *chatbot.Dispatcher
}

func NewChatHandler(dispatcher *chatbot.Dispatcher) *ChatHandler {
	return &ChatHandler{dispatcher: dispatcher}
}

type chatReply struct {
	Answer    string         `json:"answer"`
	Source    chatbot.Source `json:"source"`
	Label     string         `json:"label"`
	SessionID string         `json:"session_id"`
}

func newChatReply(out chatbot.Outcome, sessionID string) chatReply {
	return chatReply{
		Answer:    out.Answer,
		Source:    out.Source,
		Label:     out.Source.Label(),
		SessionID: sessionID,
	}
}

func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Ctx(c.UserContext()).Error("Failed to parse request body", zap.Error(err))
		return badRequest(c, "Invalid request body")
	}
	if body, ok := c.Locals(validation.SanitizedBodyKey).(map[string]interface{}); ok {
		if msg, ok := body["message"].(string); ok {
			req.Message = msg
		}
	}

	if req.Message == "" {
		return badRequest(c, "Message is required")
	}

	out, sessionID := h.dispatcher.Chat(c.UserContext(), req.SessionID, req.Message)
	return c.JSON(newChatReply(out, sessionID))
}

func (h *ChatHandler) History(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return badRequest(c, "session_id is required")
	}

	turns, err := h.dispatcher.History(c.UserContext(), sessionID)
	if err != nil {
		logger.Ctx(c.UserContext()).Error("Failed to load chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load chat history",
		})
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"history":    turns,
	})
}

func (h *ChatHandler) Reset(c *fiber.Ctx) error {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.SessionID == "" {
		return badRequest(c, "session_id is required")
	}

	if err := h.dispatcher.Reset(c.UserContext(), req.SessionID); err != nil {
		logger.Ctx(c.UserContext()).Error("Failed to reset chat", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reset chat",
		})
	}

	return c.JSON(fiber.Map{"message": "Chat history cleared"})
}
