package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rims/internal/access"
	"github.com/iliyamo/rims/internal/handler"
	"github.com/iliyamo/rims/internal/middleware"
	"github.com/iliyamo/rims/internal/model"
)

// RegisterTenant registers the tenant booking endpoints under
// /v1/bookings. All require a TENANT token.
func RegisterTenant(e *echo.Echo, deps access.Deps, jwtSecret string) {
	g := e.Group(
		"/v1/bookings",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleTenant),
		middleware.Capability(deps),
	)
	g.POST("", handler.Book)
	g.GET("", handler.MyBookings)
	g.GET("/previous", handler.PreviousBookings)
	g.GET("/:id", handler.GetBooking)
	g.DELETE("/:id", handler.CancelBooking)
}
