package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Tickets      *handlers.TicketsHandler
	Staff        *handlers.StaffHandler
	StaffTickets *handlers.StaffTicketsHandler
	StaffGate    *auth.StaffGate
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/tickets", cfg.Tickets.SubmitTicket)
	app.Get("/tickets/recent", cfg.Tickets.RecentTickets)

	app.Post("/auth/staff/login", cfg.Staff.Login)

	staff := app.Group("/staff", cfg.StaffGate.Handle)
	staff.Get("/tickets", cfg.StaffTickets.ListTickets)
	staff.Put("/tickets/:id", cfg.StaffTickets.UpdateTicket)
	staff.Get("/tickets/:id/attachments", cfg.StaffTickets.ListAttachments)
	staff.Delete("/tickets/:id/attachments/:name", cfg.StaffTickets.DeleteAttachment)
	staff.Get("/summary", cfg.StaffTickets.Summary)
}
