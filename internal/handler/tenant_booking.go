package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rims/internal/access"
)

type bookReq struct {
	PropertyID    uint64 `json:"property_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	PaymentMethod string `json:"payment_method"`
	// PayNow asks for the payment to be settled now; Email and Password
	// are re-checked and must belong to the caller.
	PayNow   bool   `json:"pay_now"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Book handles POST /v1/bookings.
func Book(c echo.Context) error {
	t, ok := tenantOf(c)
	if !ok {
		return forbidden(c)
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PropertyID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "property_id is required"})
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	res, err := t.Book(c.Request().Context(), access.BookInput{
		PropertyID:    req.PropertyID,
		StartDate:     start,
		EndDate:       end,
		PaymentMethod: req.PaymentMethod,
		PayNow:        req.PayNow,
		Email:         req.Email,
		Password:      req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// CancelBooking handles DELETE /v1/bookings/:id.
func CancelBooking(c echo.Context) error {
	t, ok := tenantOf(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := t.Cancel(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking_id": id, "status": "Cancelled"})
}

// MyBookings handles GET /v1/bookings.
func MyBookings(c echo.Context) error {
	t, ok := tenantOf(c)
	if !ok {
		return forbidden(c)
	}
	list, err := t.Bookings(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// PreviousBookings handles GET /v1/bookings/previous.
func PreviousBookings(c echo.Context) error {
	t, ok := tenantOf(c)
	if !ok {
		return forbidden(c)
	}
	list, err := t.PreviousBookings(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// GetBooking handles GET /v1/bookings/:id. The response carries the
// booking's payments.
func GetBooking(c echo.Context) error {
	t, ok := tenantOf(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	d, err := t.Booking(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
