package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/renthub/home-rental/internal/repository"
)

// PropertyHandler serves the owner-side property listing endpoints.
type PropertyHandler struct {
	Properties *repository.PropertyRepo
}

// NewPropertyHandler constructs a new PropertyHandler and panics if the repo is nil
func NewPropertyHandler(properties *repository.PropertyRepo) *PropertyHandler {
	if properties == nil {
		panic("nil repository passed to NewPropertyHandler")
	}
	return &PropertyHandler{Properties: properties}
}

// CreateProperty handles POST /v1/properties.  The new listing is
// available for booking immediately.
func (h *PropertyHandler) CreateProperty(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Title        string `json:"title"`
		Address      string `json:"address"`
		RentCents    uint32 `json:"rent_cents"`
		DepositCents uint32 `json:"deposit_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Title == "" || body.Address == "" || body.RentCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, address and rent_cents are required"})
	}
	rec := repository.PropertyRecord{
		OwnerID:      userID,
		Title:        body.Title,
		Address:      body.Address,
		IsAvailable:  true,
		RentCents:    body.RentCents,
		DepositCents: body.DepositCents,
	}
	if err := h.Properties.Create(c.Request().Context(), &rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create property"})
	}
	return c.JSON(http.StatusCreated, rec)
}

// ListMyProperties handles GET /v1/my-properties.
func (h *PropertyHandler) ListMyProperties(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Properties.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load properties"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateProperty handles PATCH /v1/properties/:id.  Only the owner of
// the listing may update it; omitted fields are left untouched.
func (h *PropertyHandler) UpdateProperty(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	propertyID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	var body struct {
		Title        *string `json:"title"`
		Address      *string `json:"address"`
		RentCents    *uint32 `json:"rent_cents"`
		DepositCents *uint32 `json:"deposit_cents"`
		IsAvailable  *bool   `json:"is_available"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	upd := repository.PropertyListingUpdate{
		Title:        body.Title,
		Address:      body.Address,
		RentCents:    body.RentCents,
		DepositCents: body.DepositCents,
		IsAvailable:  body.IsAvailable,
	}
	if err := h.Properties.UpdateListing(c.Request().Context(), propertyID, userID, upd); err != nil {
		switch {
		case errors.Is(err, repository.ErrPropertyNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update property"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "property updated"})
}
