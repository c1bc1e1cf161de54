package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/chatbot"
	"github.com/campus-buddy/backend/pkg/logger"
)

type WebSocketHandler struct {
	dispatcher       *chatbot.Dispatcher
	maxMessageLength int
}

func NewWebSocketHandler(dispatcher *chatbot.Dispatcher, maxMessageLength int) *WebSocketHandler {
	return &WebSocketHandler{
		dispatcher:       dispatcher,
		maxMessageLength: maxMessageLength,
	}
}

// Upgrade rejects plain HTTP requests to the websocket route.
func (h *WebSocketHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	sessionID := ""

	for {
		var msg struct {
			Type      string `json:"type"`
			Content   string `json:"content"`
			SessionID string `json:"session_id"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Error("Failed to read WebSocket message", zap.Error(err))
			}
			break
		}

		if msg.Type != "chat" {
			continue
		}

		content := strings.TrimSpace(msg.Content)
		if content == "" {
			h.sendError(c, "Message is required")
			continue
		}
		if h.maxMessageLength > 0 && len([]rune(content)) > h.maxMessageLength {
			h.sendError(c, "Message exceeds maximum length")
			continue
		}

		if msg.SessionID != "" {
			sessionID = msg.SessionID
		}

		if err := h.sendStatus(c, "Thinking..."); err != nil {
			logger.Error("Failed to send status", zap.Error(err))
			break
		}

		out, sid := h.dispatcher.Chat(context.Background(), sessionID, content)
		sessionID = sid

		if err := h.sendAnswer(c, out, sessionID); err != nil {
			logger.Error("Failed to send answer", zap.Error(err))
			break
		}
	}
}

func (h *WebSocketHandler) sendStatus(c *websocket.Conn, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    "status",
		"content": content,
	})
}

func (h *WebSocketHandler) sendAnswer(c *websocket.Conn, out chatbot.Outcome, sessionID string) error {
	reply := newChatReply(out, sessionID)
	return c.WriteJSON(map[string]interface{}{
		"type":       "answer",
		"content":    reply.Answer,
		"source":     reply.Source,
		"label":      reply.Label,
		"session_id": reply.SessionID,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	msg := map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	}

	if err := c.WriteJSON(msg); err != nil {
		logger.Warn("Failed to send error", zap.Error(err))
	}
}
