package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/rims/internal/model"
)

type propertyReq struct {
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Location      string          `json:"location"`
	PricePerMonth decimal.Decimal `json:"price_per_month"`
	Sharing       *int            `json:"sharing"`
}

type statusReq struct {
	Status string `json:"status"`
}

// OwnerListProperties handles GET /v1/owner/properties.
func OwnerListProperties(c echo.Context) error {
	o, ok := ownerOf(c)
	if !ok {
		return forbidden(c)
	}
	props, err := o.Properties(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"properties": props})
}

// OwnerCreateProperty handles POST /v1/owner/properties.
func OwnerCreateProperty(c echo.Context) error {
	o, ok := ownerOf(c)
	if !ok {
		return forbidden(c)
	}
	var req propertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, err := o.AddProperty(c.Request().Context(), model.Property{
		Name:          req.Name,
		Type:          req.Type,
		Location:      req.Location,
		PricePerMonth: req.PricePerMonth,
		Sharing:       req.Sharing,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// OwnerSetAvailability handles PATCH /v1/owner/properties/:id/availability.
func OwnerSetAvailability(c echo.Context) error {
	o, ok := ownerOf(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := model.AvailabilityStatus(req.Status)
	if err := o.SetAvailability(c.Request().Context(), id, status); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"property_id": id, "availability_status": status})
}

// OwnerDeleteProperty handles DELETE /v1/owner/properties/:id.
func OwnerDeleteProperty(c echo.Context) error {
	o, ok := ownerOf(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	if err := o.DeleteProperty(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// OwnerListResidents handles GET /v1/owner/properties/:id/residents.
func OwnerListResidents(c echo.Context) error {
	o, ok := ownerOf(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	ids, err := o.Residents(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"property_id": id, "user_ids": ids})
}
