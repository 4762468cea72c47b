package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole rejects requests whose role (set by JWTAuth) is not one of
// roles with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !HasRole(c, roles...) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// HasRole reports whether the authenticated role is one of roles.
func HasRole(c echo.Context, roles ...string) bool {
	role, _ := c.Get(CtxRole).(string)
	for _, r := range roles {
		if role != "" && role == r {
			return true
		}
	}
	return false
}
