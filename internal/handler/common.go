package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/rims/internal/access"
	"github.com/iliyamo/rims/internal/auth"
	"github.com/iliyamo/rims/internal/booking"
	"github.com/iliyamo/rims/internal/repository"
)

// Echo context keys set by middleware.
const (
	AccessKey = "access" // access.Role for the request
	LoggerKey = "logger" // logrus.FieldLogger with request fields
)

func loggerOf(c echo.Context) logrus.FieldLogger {
	if l, ok := c.Get(LoggerKey).(logrus.FieldLogger); ok {
		return l
	}
	return logrus.StandardLogger()
}

// getUserID extracts the authenticated user id that JWTAuth stored in
// the context.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

const dateLayout = "2006-01-02"

var errBadDate = errors.New("invalid date, expected YYYY-MM-DD with a year between 2000 and 2100")

// parseDate reads a calendar date. Years outside 2000-2100 are rejected
// as typos before they reach the booking rules.
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil || d.Year() < 2000 || d.Year() > 2100 {
		return time.Time{}, errBadDate
	}
	return d, nil
}

func browserOf(c echo.Context) (*access.Browser, bool) {
	switch r := c.Get(AccessKey).(type) {
	case *access.Browser:
		return r, true
	case *access.Tenant:
		return &r.Browser, true
	case *access.Owner:
		return &r.Browser, true
	}
	return nil, false
}

func tenantOf(c echo.Context) (*access.Tenant, bool) {
	t, ok := c.Get(AccessKey).(*access.Tenant)
	return t, ok
}

func ownerOf(c echo.Context) (*access.Owner, bool) {
	o, ok := c.Get(AccessKey).(*access.Owner)
	return o, ok
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}

// statusOf maps an error onto an HTTP status and the message shown to
// the client. Unknown errors are reported without detail.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "property is booked"
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound, booking.ErrNotFound.Error()
	case errors.Is(err, booking.ErrInvalidDateRange):
		return http.StatusBadRequest, booking.ErrInvalidDateRange.Error()
	case errors.Is(err, booking.ErrPersistence):
		return http.StatusServiceUnavailable, booking.ErrPersistence.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	}
	for _, k := range []error{
		booking.ErrPropertyUnavailable,
		booking.ErrAlreadyCancelled,
		booking.ErrAlreadyCompleted,
		booking.ErrInvalidTransition,
	} {
		if errors.Is(err, k) {
			return http.StatusConflict, k.Error()
		}
	}
	for _, k := range []error{
		access.ErrInvalidProperty,
		access.ErrInvalidStatus,
		access.ErrUnknownFilter,
		auth.ErrInvalidEmail,
		auth.ErrInvalidPhone,
		auth.ErrInvalidRole,
		auth.ErrMissingField,
	} {
		if errors.Is(err, k) {
			return http.StatusBadRequest, err.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

func writeError(c echo.Context, err error) error {
	code, msg := statusOf(err)
	if code >= http.StatusInternalServerError {
		loggerOf(c).WithError(err).Error("request failed")
	}
	return c.JSON(code, echo.Map{"error": msg})
}
