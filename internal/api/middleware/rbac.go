package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireScope enforces scope-based access control on top of Auth. The token
// must carry at least one of the given scopes.
func RequireScope(scopes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenCtx := TokenContext(c)
			if tokenCtx == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token context")
			}
			for _, scope := range scopes {
				if tokenCtx.HasScope(scope) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
