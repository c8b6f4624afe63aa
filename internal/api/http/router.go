package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/training-tracker/internal/api/http/handlers"
	"github.com/spec-kit/training-tracker/internal/auth"
	"github.com/spec-kit/training-tracker/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Trainings      *handlers.TrainingsHandler
	Assignments    *handlers.AssignmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	adminOnly := auth.RequireRole(domain.RoleAdmin)

	trainings := app.Group("/trainings", cfg.AuthMiddleware.Handle)
	trainings.Get("/", cfg.Trainings.List)
	trainings.Get("/:id", cfg.Trainings.Get)
	trainings.Post("/", adminOnly, cfg.Trainings.Create)
	trainings.Put("/:id", adminOnly, cfg.Trainings.Update)
	trainings.Delete("/:id", adminOnly, cfg.Trainings.Delete)

	assignments := app.Group("/assignments", cfg.AuthMiddleware.Handle)
	// registered before /:id so "progress" is not captured as an id
	assignments.Get("/progress", adminOnly, cfg.Assignments.Progress)
	assignments.Get("/", cfg.Assignments.List)
	assignments.Get("/:id", cfg.Assignments.Get)
	assignments.Post("/", adminOnly, cfg.Assignments.Assign)
	assignments.Patch("/:id/status", cfg.Assignments.UpdateStatus)
	assignments.Delete("/:id", adminOnly, cfg.Assignments.Delete)
}
