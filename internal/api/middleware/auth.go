package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fieldtrack/assettrack/internal/auth"
)

// ctxKeyAuth is the echo context key the verified token context is stored
// under.
const ctxKeyAuth = "auth_context"

// Auth validates the bearer token and injects the verified auth context.
func Auth(verifier *auth.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			tokenCtx, err := verifier.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ctxKeyAuth, tokenCtx)
			return next(c)
		}
	}
}

// TokenContext returns the verified auth context set by Auth, or nil.
func TokenContext(c echo.Context) *auth.Context {
	tokenCtx, _ := c.Get(ctxKeyAuth).(*auth.Context)
	return tokenCtx
}
