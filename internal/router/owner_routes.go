package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rims/internal/access"
	"github.com/iliyamo/rims/internal/handler"
	"github.com/iliyamo/rims/internal/middleware"
	"github.com/iliyamo/rims/internal/model"
)

// RegisterOwner registers OWNER-scoped endpoints under /v1/owner.
func RegisterOwner(e *echo.Echo, deps access.Deps, jwtSecret string) {
	g := e.Group(
		"/v1/owner",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner),
		middleware.Capability(deps),
	)

	// ---- Properties ----
	g.GET("/properties", handler.OwnerListProperties)
	g.POST("/properties", handler.OwnerCreateProperty)
	g.PATCH("/properties/:id/availability", handler.OwnerSetAvailability)
	g.DELETE("/properties/:id", handler.OwnerDeleteProperty)
	g.GET("/properties/:id/residents", handler.OwnerListResidents)

	// ---- Bookings ----
	g.GET("/bookings", handler.OwnerListBookings)
	g.PATCH("/bookings/:id/status", handler.OwnerSetBookingStatus)
}
