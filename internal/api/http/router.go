package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/http/handlers"
	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/authz"
	"github.com/spec-kit/workforce-service/internal/config"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Team           *handlers.TeamHandler
	Tasks          *handlers.TasksHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	Engine         *authz.Engine
	HTTP           config.HTTPConfig
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	require := func(action authz.Action) fiber.Handler { return auth.Require(cfg.Engine, action) }

	limited := authRateLimiter(cfg.HTTP)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/verify-email", cfg.Auth.VerifyEmail)
	authGroup.Post("/login", limited, cfg.Auth.Login)
	authGroup.Post("/forgot-password", limited, cfg.Auth.ForgotPassword)
	authGroup.Get("/verify-reset-token", cfg.Auth.VerifyResetToken)
	authGroup.Post("/reset-password", limited, cfg.Auth.ResetPassword)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/profile", require(authz.ActionViewProfile), cfg.Users.Profile)
	users.Patch("/profile", require(authz.ActionUpdateProfile), cfg.Users.UpdateProfile)
	users.Patch("/update-profile", require(authz.ActionUpdateProfile), cfg.Users.UpdateProfile)
	users.Post("/logout", require(authz.ActionLogout), cfg.Users.Logout)
	users.Get("/all", require(authz.ActionListUsers), cfg.Users.All)

	manager := api.Group("/manager", cfg.AuthMiddleware.Handle)
	manager.Post("/create-employee", require(authz.ActionCreateEmployee), cfg.Team.CreateEmployee)
	manager.Get("/team", require(authz.ActionViewTeam), cfg.Team.Team)
	manager.Get("/employee/:id", require(authz.ActionViewEmployee), cfg.Team.GetEmployee)
	manager.Patch("/employee/:id", require(authz.ActionUpdateEmployee), cfg.Team.UpdateEmployee)
	manager.Delete("/employee/:id", require(authz.ActionDeleteEmployee), cfg.Team.DeleteEmployee)

	tasks := api.Group("/tasks", cfg.AuthMiddleware.Handle)
	tasks.Post("/", require(authz.ActionCreateTask), cfg.Tasks.Create)
	tasks.Get("/", require(authz.ActionListTasks), cfg.Tasks.List)
	tasks.Get("/:id", require(authz.ActionViewTask), cfg.Tasks.Get)
	tasks.Patch("/:id", require(authz.ActionUpdateTask), cfg.Tasks.Update)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", require(authz.ActionCreateTicket), cfg.Tickets.CreateTicket)
	tickets.Get("/", require(authz.ActionListTickets), cfg.Tickets.ListTickets)
	tickets.Get("/:id", require(authz.ActionViewTicket), cfg.Tickets.GetTicket)
	tickets.Post("/:id/comment", require(authz.ActionCommentTicket), cfg.Tickets.AddComment)
	tickets.Patch("/:id/assign", require(authz.ActionAssignTicket), cfg.Tickets.AssignTicket)
}
