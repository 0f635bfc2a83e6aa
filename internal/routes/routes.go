package routes

import (
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	sessions middleware.SessionResolver,
	authHandler *handlers.AuthHandler,
	adminHandler *handlers.AdminHandler,
	postalHandler *handlers.PostalHandler,
	viewHandler *handlers.ViewHandler,
	healthHandler *handlers.HealthHandler,
) {
	required := middleware.SessionRequired(cfg, sessions)
	optional := middleware.SessionOptional(cfg, sessions)

	api := app.Group("/api")

	api.Get("/health", healthHandler.Check)

	// Postal lookup is public; the registration form calls it before an
	// account exists.
	api.Get("/postal-codes/:code", postalHandler.Lookup)

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", required, authHandler.Logout)
	auth.Get("/session", required, authHandler.Session)

	admin := api.Group("/admin", required, middleware.AdminRequired())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Patch("/users/:id", adminHandler.UpdateUser)
	admin.Delete("/users/:id", adminHandler.DeleteUser)

	// Pages resolve the session optionally and redirect on their own.
	app.Get("/", optional, viewHandler.Home)
	app.Get("/login", optional, viewHandler.Login)
	app.Get("/register", optional, viewHandler.Register)
	app.Get("/dashboard", optional, viewHandler.Dashboard)
	app.Get("/admin", optional, viewHandler.Admin)
}
