package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/api/handler"
	"github.com/fieldtrack/assettrack/internal/api/middleware"
	"github.com/fieldtrack/assettrack/internal/api/ws"
	"github.com/fieldtrack/assettrack/internal/auth"
	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/transport/dispatch"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Users      *handler.AuthHandler
	Health     *handler.HealthHandler
	Readiness  *handler.ReadinessHandler
	Verifier   *auth.Authenticator
	Dispatcher *dispatch.Dispatcher
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.TimeoutWithConfig(echomiddleware.TimeoutConfig{
		Timeout: 30 * time.Second,
		Skipper: func(c echo.Context) bool { return c.Path() == "/ws" },
	}))
	e.Use(echoprometheus.NewMiddleware("assettrack"))

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/health", deps.Health.Liveness)
	e.GET("/health/ready", deps.Readiness.Readiness)

	// --- Auth ---
	e.POST("/auth/login", deps.Users.Login)
	e.POST("/auth/register", deps.Users.Register,
		middleware.Auth(deps.Verifier),
		middleware.RequireScope(string(domain.RoleAdmin)),
	)

	// --- Client sessions ---
	gateway := ws.NewGateway(deps.Verifier, deps.Dispatcher, deps.Log)
	e.GET("/ws", gateway.Handle)

	return e
}
