package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rims/internal/model"
)

// OwnerListBookings handles GET /v1/owner/bookings?status=Active.
func OwnerListBookings(c echo.Context) error {
	o, ok := ownerOf(c)
	if !ok {
		return forbidden(c)
	}
	list, err := o.Bookings(c.Request().Context(), model.BookingStatus(c.QueryParam("status")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// OwnerSetBookingStatus handles PATCH /v1/owner/bookings/:id/status. Only
// Active bookings can be closed, as Completed or Cancelled.
func OwnerSetBookingStatus(c echo.Context) error {
	o, ok := ownerOf(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := model.BookingStatus(req.Status)
	if err := o.SetBookingStatus(c.Request().Context(), id, status); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking_id": id, "status": status})
}
