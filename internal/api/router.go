// Package api assembles the HTTP application: middleware, handlers and
// routes under /api/v1.
package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"

	"github.com/campus-buddy/backend/internal/api/handlers"
	"github.com/campus-buddy/backend/internal/auth"
	"github.com/campus-buddy/backend/internal/catalog"
	"github.com/campus-buddy/backend/internal/chatbot"
	"github.com/campus-buddy/backend/internal/complaints"
	"github.com/campus-buddy/backend/internal/metrics"
	authmw "github.com/campus-buddy/backend/internal/middleware/auth"
	"github.com/campus-buddy/backend/internal/middleware/ratelimit"
	"github.com/campus-buddy/backend/internal/middleware/security"
	"github.com/campus-buddy/backend/internal/middleware/validation"
	"github.com/campus-buddy/backend/internal/nlp"
	"github.com/campus-buddy/backend/pkg/config"
	"github.com/campus-buddy/backend/pkg/logger"
)

const prefix = "/api/v1"

type Deps struct {
	Config     *config.Config
	Catalog    *catalog.Catalog
	Analyzer   *nlp.Analyzer
	Dispatcher *chatbot.Dispatcher
	Complaints *complaints.Service
	Accounts   *auth.Accounts
	Tokens     *auth.JWTManager
	DB         handlers.Pinger
	// RequestLog enables the fiber access log.
	RequestLog bool
}

// New builds the application. The returned stop function releases the
// rate limiter and must be called after shutdown.
func New(d Deps) (*fiber.App, func()) {
	cfg := d.Config

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	allowOrigins := "*"
	if len(cfg.Server.AllowedOrigins) > 0 {
		allowOrigins = strings.Join(cfg.Server.AllowedOrigins, ",")
	}

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Header: logger.RequestIDHeader}))
	app.Use(bindRequestID)
	if d.RequestLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IsDevelopment:  cfg.Server.Development,
	}))
	app.Use(validation.Middleware(validation.Config{
		MaxMessageLength: cfg.Server.MaxMessageLength,
		TextFields: map[string]string{
			prefix + "/chat":     "message",
			prefix + "/classify": "text",
		},
		Logger: logger.GetLogger(),
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.ChatPerMinute,
		Logger:               logger.GetLogger(),
	})

	health := handlers.NewHealthHandler(d.DB)
	login := handlers.NewAuthHandler(d.Accounts, d.Tokens)
	cat := handlers.NewCatalogHandler(d.Catalog)
	chat := handlers.NewChatHandler(d.Dispatcher)
	ws := handlers.NewWebSocketHandler(d.Dispatcher, cfg.Server.MaxMessageLength)
	classify := handlers.NewClassifyHandler(d.Analyzer, d.Catalog)
	student := handlers.NewComplaintHandler(d.Complaints, cfg.Attachments.MaxBytes)
	admin := handlers.NewAdminHandler(d.Complaints)

	app.Get("/metrics", metrics.MetricsHandler())

	v1 := app.Group(prefix)

	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)
	v1.Get("/metrics", metrics.MetricsHandler())

	v1.Post("/auth/login", limiter.Middleware(), login.Login)

	v1.Get("/faq", cat.FAQ)
	v1.Get("/categories", cat.Categories)

	v1.Post("/chat", limiter.Middleware(), chat.Chat)
	v1.Get("/chat/history", chat.History)
	v1.Post("/chat/reset", chat.Reset)
	v1.Get("/chat/ws", ws.Upgrade, websocket.New(ws.HandleConnection))

	v1.Post("/classify", limiter.Middleware(), classify.Classify)

	studentOnly := authmw.RequireRole(d.Tokens, auth.RoleStudent)
	v1.Post("/complaints", studentOnly, student.Submit)
	v1.Get("/complaints/mine", studentOnly, student.Mine)
	v1.Put("/complaints/:id", studentOnly, student.Edit)
	v1.Delete("/complaints/:id", studentOnly, student.Withdraw)
	v1.Get("/notifications", studentOnly, student.Notifications)

	adminGroup := v1.Group("/admin", authmw.RequireRole(d.Tokens, auth.RoleAdmin))
	adminGroup.Get("/complaints", admin.List)
	adminGroup.Get("/complaints/filter", admin.Filter)
	adminGroup.Get("/dashboard", admin.Dashboard)
	adminGroup.Put("/complaints/:id/status", admin.UpdateStatus)
	adminGroup.Put("/complaints/:id/assign", admin.Assign)
	adminGroup.Get("/export", admin.Export)

	return app, limiter.Stop
}

// bindRequestID moves the id set by the requestid middleware into the user
// context so services can log it.
func bindRequestID(c *fiber.Ctx) error {
	if id, ok := c.Locals("requestid").(string); ok {
		c.SetUserContext(logger.WithRequestID(c.UserContext(), id))
	}
	return c.Next()
}
