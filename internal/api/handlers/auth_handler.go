package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/auth"
	"github.com/campus-buddy/backend/pkg/logger"
)

type AuthHandler struct {
	accounts *auth.Accounts
	tokens   *auth.JWTManager
}

func NewAuthHandler(accounts *auth.Accounts, tokens *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokens:   tokens,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	role, ok := auth.ParseRole(req.Role)
	if !ok {
		return badRequest(c, "role must be student or admin")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}

	email, err := h.accounts.Verify(role, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Warn("Login failed", zap.String("role", string(role)), zap.String("ip", c.IP()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		logger.Error("Failed to verify credentials", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign in"})
	}

	token, err := h.tokens.GenerateToken(email, role)
	if err != nil {
		logger.Error("Failed to issue token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign in"})
	}

	logger.Info("User signed in", zap.String("role", string(role)))

	return c.JSON(fiber.Map{
		"token":      token,
		"email":      email,
		"role":       role,
		"expires_in": int(h.tokens.Expiration().Seconds()),
	})
}
