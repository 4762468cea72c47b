package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Check reports whether a backing service is reachable.
type Check func(ctx context.Context) error

// Health handles GET /healthz.  With no checks it answers "ok"; otherwise
// every check runs and any failure turns the response into a 503.
func Health(checks map[string]Check) echo.HandlerFunc {
	return func(c echo.Context) error {
		if len(checks) == 0 {
			return c.String(http.StatusOK, "ok")
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		return c.JSON(status, echo.Map{"status": http.StatusText(status), "checks": results})
	}
}
