package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/api/http/handlers"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/auth"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Cart           *handlers.CartHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.AuthMiddleware.Optional, cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.Me)

	// guests reach the cart without a token
	cart := app.Group("/cart", cfg.AuthMiddleware.Optional)
	cart.Get("", cfg.Cart.Get)
	cart.Post("/items", cfg.Cart.AddItem)
	cart.Put("/items/:serviceID", cfg.Cart.SetQuantity)
	cart.Delete("/items/:serviceID", cfg.Cart.RemoveItem)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Put("/principals/:id/roles", cfg.Admin.UpdateRoles)
	admin.Get("/metrics", cfg.Admin.Metrics)
}
