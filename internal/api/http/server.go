package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/api/http/handlers"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/auth"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/config"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/guest"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/observability"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/persistence"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/service"
)

// ServerDeps are the collaborators the HTTP app is built from.
type ServerDeps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Auth     *service.AuthService
	Issuer   *auth.Issuer
	Bridge   *guest.Bridge
	Postgres *persistence.Postgres
	Redis    *persistence.Redis
}

// NewApp builds the fiber app with middlewares and routes registered.
func NewApp(deps ServerDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               deps.Config.App.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, deps.Logger, deps.Metrics, deps.Config.App.RequestTimeout())

	cookie := handlers.NewGuestCookie(deps.Config.Guest)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(deps.Config.App.Name, deps.Config.App.Version, deps.Postgres, deps.Redis),
		Auth:           handlers.NewAuthHandler(deps.Auth, cookie),
		Cart:           handlers.NewCartHandler(deps.Bridge, cookie),
		Admin:          handlers.NewAdminHandler(deps.Auth, deps.Metrics),
		AuthMiddleware: auth.NewAuthMiddleware(deps.Issuer),
	})
	return app
}
