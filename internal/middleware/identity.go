package middleware

import "github.com/labstack/echo/v4"

// UserID returns the authenticated subject, or "anon" when the request
// carries no verified token.
func UserID(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
