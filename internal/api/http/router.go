package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/civicdesk/complaint-service/internal/api/http/handlers"
	"github.com/civicdesk/complaint-service/internal/auth"
	"github.com/civicdesk/complaint-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Complaints     *handlers.ComplaintsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	VoteLimiter    *IPRateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	complaints := app.Group("/complaints")
	complaints.Post("/", cfg.AuthMiddleware.Optional, cfg.Complaints.Create)
	complaints.Get("/track/:code", cfg.Complaints.Track)

	vote := []fiber.Handler{cfg.Complaints.Vote}
	if cfg.VoteLimiter != nil {
		vote = append([]fiber.Handler{cfg.VoteLimiter.Middleware()}, vote...)
	}
	complaints.Post("/:id/vote", vote...)

	authed := cfg.AuthMiddleware.Handle
	complaints.Get("/:id", authed, cfg.Complaints.Get)
	complaints.Patch("/:id", authed, cfg.Complaints.Update)
	complaints.Get("/:id/edits", authed, cfg.Complaints.ListEdits)
	complaints.Post("/:id/withdraw", authed, auth.RequireUser(), cfg.Complaints.Withdraw)
	complaints.Post("/:id/restore", authed, auth.RequireUser(), cfg.Complaints.Restore)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
}
