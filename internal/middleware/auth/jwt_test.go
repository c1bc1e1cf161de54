package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-buddy/backend/internal/auth"
)

func TestRequireRole(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour)
	other := auth.NewJWTManager("other-secret", time.Hour)

	app := fiber.New()
	app.Get("/admin", RequireRole(manager, auth.RoleAdmin), func(c *fiber.Ctx) error {
		claims, ok := Claims(c)
		require.True(t, ok)
		return c.SendString(claims.Email)
	})
	app.Get("/any", RequireRole(manager), func(c *fiber.Ctx) error { return c.SendString("ok") })

	adminToken, err := manager.GenerateToken("dean@college.edu", auth.RoleAdmin)
	require.NoError(t, err)
	studentToken, err := manager.GenerateToken("s@college.edu", auth.RoleStudent)
	require.NoError(t, err)
	forged, err := other.GenerateToken("dean@college.edu", auth.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"admin", "/admin", "Bearer " + adminToken, fiber.StatusOK},
		{"student on admin route", "/admin", "Bearer " + studentToken, fiber.StatusForbidden},
		{"student on open route", "/any", "Bearer " + studentToken, fiber.StatusOK},
		{"missing header", "/any", "", fiber.StatusUnauthorized},
		{"malformed header", "/any", "Token " + adminToken, fiber.StatusUnauthorized},
		{"wrong secret", "/admin", "Bearer " + forged, fiber.StatusUnauthorized},
		{"query token", "/any?token=" + studentToken, "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
