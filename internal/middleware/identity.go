package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rims/internal/access"
	"github.com/iliyamo/rims/internal/handler"
)

// Capability resolves the caller's role into an access handle and stores
// it under handler.AccessKey. Requests without a role get a Browser.
func Capability(deps access.Deps) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			uid, _ := c.Get("user_id").(uint64)
			d := deps
			d.Log = requestLogger(c)
			h, err := access.For(role, uid, d)
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			c.Set(handler.AccessKey, h)
			return next(c)
		}
	}
}

// currentUserID returns the authenticated user id as a string, or "anon".
func currentUserID(c echo.Context) string {
	if uid, ok := c.Get("user_id").(uint64); ok && uid > 0 {
		return strconv.FormatUint(uid, 10)
	}
	return "anon"
}
