package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/suportehub/helpdesk-service/internal/api/http/handlers"
	"github.com/suportehub/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	InviteCodes    *handlers.InviteCodesHandler
	Tickets        *handlers.TicketsHandler
	Groups         *handlers.GroupsHandler
	Tasks          *handlers.TasksHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.Me)

	// Code lookup stays public so the registration form can validate before
	// submitting; generation is agent-only.
	app.Get("/invite-codes/:code", cfg.InviteCodes.ValidateCode)
	app.Post("/invite-codes", cfg.AuthMiddleware.Handle, auth.RequireAgent(), cfg.InviteCodes.GenerateCodes)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Post("/:id/attachments", cfg.Tickets.AddAttachments)

	agentTickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAgent())
	agentTickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	agentTickets.Post("/:id/status", cfg.Tickets.UpdateStatus)
	// kept as an alias; the documented method is POST
	agentTickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	agentTickets.Post("/:id/assign/:userId", cfg.Tickets.AssignTicket)
	agentTickets.Post("/:id/reopen", cfg.Tickets.ReopenTicket)
	agentTickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	groups := app.Group("/assignment-groups", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	groups.Get("/", cfg.Groups.ListGroups)
	groups.Get("/:id", cfg.Groups.GetGroup)

	agentGroups := app.Group("/assignment-groups", cfg.AuthMiddleware.Handle, auth.RequireAgent())
	agentGroups.Post("/", cfg.Groups.CreateGroup)
	agentGroups.Patch("/:id", cfg.Groups.UpdateGroup)
	agentGroups.Delete("/:id", cfg.Groups.DeleteGroup)

	tasks := app.Group("/tasks", cfg.AuthMiddleware.Handle, auth.RequireAgent())
	tasks.Get("/", cfg.Tasks.ListTasks)
	tasks.Get("/:id", cfg.Tasks.GetTask)
	tasks.Post("/", cfg.Tasks.CreateTask)
	tasks.Patch("/:id", cfg.Tasks.UpdateTask)
	tasks.Delete("/:id", cfg.Tasks.DeleteTask)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	users.Patch("/me", cfg.Users.UpdateProfile)

	agentUsers := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAgent())
	agentUsers.Get("/", cfg.Users.ListUsers)
	agentUsers.Get("/:id", cfg.Users.GetUser)
	agentUsers.Delete("/:id", cfg.Users.DeleteUser)
}
