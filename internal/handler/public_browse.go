package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListAvailableProperties handles GET /v1/properties. It is open to
// anonymous callers.
func ListAvailableProperties(c echo.Context) error {
	b, ok := browserOf(c)
	if !ok {
		return forbidden(c)
	}
	props, err := b.AvailableProperties(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"properties": props})
}

// GetAvailability handles GET /v1/properties/:id/availability.
func GetAvailability(c echo.Context) error {
	b, ok := browserOf(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	av, err := b.Availability(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, av)
}
