package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/renthub/home-rental/internal/repository"
)

// BrowseHandler serves the unauthenticated property browse endpoints.
// Responses are cached by the Redis middleware on the route group.
type BrowseHandler struct {
	Properties *repository.PropertyRepo
}

// NewBrowseHandler constructs a new BrowseHandler and panics if the repo is nil
func NewBrowseHandler(properties *repository.PropertyRepo) *BrowseHandler {
	if properties == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	return &BrowseHandler{Properties: properties}
}

// ListAvailable handles GET /v1/properties and returns every listing
// currently accepting bookings.
func (h *BrowseHandler) ListAvailable(c echo.Context) error {
	items, err := h.Properties.ListAvailable(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load properties"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetProperty handles GET /v1/properties/:id.
func (h *BrowseHandler) GetProperty(c echo.Context) error {
	propertyID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	rec, err := h.Properties.GetByID(c.Request().Context(), propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load property"})
	}
	return c.JSON(http.StatusOK, rec)
}
