package validation

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{
		MaxMessageLength: 10,
		TextFields:       map[string]string{"/chat": "message"},
	}))
	app.Post("/chat", func(c *fiber.Ctx) error {
		body, _ := c.Locals(SanitizedBodyKey).(map[string]interface{})
		return c.JSON(body)
	})
	app.Post("/other", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func post(t *testing.T, app *fiber.App, path, contentType, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestMiddleware(t *testing.T) {
	app := newApp()

	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
		wantStatus  int
	}{
		{"valid", "/chat", "application/json", `{"message":"  hello  "}`, fiber.StatusOK},
		{"missing field", "/chat", "application/json", `{"text":"hello"}`, fiber.StatusBadRequest},
		{"blank", "/chat", "application/json", `{"message":"   "}`, fiber.StatusBadRequest},
		{"not a string", "/chat", "application/json", `{"message":5}`, fiber.StatusBadRequest},
		{"too long", "/chat", "application/json", `{"message":"hello world!"}`, fiber.StatusBadRequest},
		{"script", "/chat", "application/json", `{"message":"<script>"}`, fiber.StatusBadRequest},
		{"bad json", "/chat", "application/json", `{`, fiber.StatusBadRequest},
		{"unsupported type", "/chat", "text/xml", `<a/>`, fiber.StatusUnsupportedMediaType},
		{"unchecked route", "/other", "application/json", `{}`, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := post(t, app, tt.path, tt.contentType, tt.body)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestMiddleware_StoresTrimmedBody(t *testing.T) {
	status, body := post(t, newApp(), "/chat", "application/json", `{"message":" hi\u0000 ","session_id":"s"}`)
	require.Equal(t, fiber.StatusOK, status)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "hi", got["message"])
	assert.Equal(t, "s", got["session_id"])
}
