package handler

import (
	"database/sql" // for sentinel errors returned from repository
	"errors"       // for errors.Is comparisons
	"net/http"     // HTTP status codes
	"time"         // parsing request dates

	"github.com/labstack/echo/v4"                        // Echo web framework
	"github.com/renthub/home-rental/internal/lease"      // orchestration core
	"github.com/renthub/home-rental/internal/repository" // repository layer
)

// TenantHandler groups the facade and repositories needed by tenants
// to request bookings, negotiate durations, sign agreements and pay.
// All methods assume that JWT authentication and role validation has
// already been performed by middleware.  Lifecycle mutations go
// through the lease facade, which runs them inside one transaction.
type TenantHandler struct {
	Facade     *lease.Facade             // orchestration entry point
	Bookings   *repository.BookingRepo   // read access to bookings
	Agreements *repository.AgreementRepo // read access to agreements
}

// NewTenantHandler constructs a new TenantHandler with the provided
// dependencies.  All dependencies must be non-nil.
func NewTenantHandler(facade *lease.Facade, bookings *repository.BookingRepo, agreements *repository.AgreementRepo) *TenantHandler {
	if facade == nil || bookings == nil || agreements == nil {
		panic("nil dependency passed to NewTenantHandler")
	}
	return &TenantHandler{Facade: facade, Bookings: bookings, Agreements: agreements}
}

// CreateBooking handles POST /v1/bookings.  The body must contain the
// property ID and the requested stay dates in RFC3339 date form
// (YYYY-MM-DD).  Returns 201 with the new booking ID, 404 when the
// property does not exist and 409 when it is unavailable.
func (h *TenantHandler) CreateBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		PropertyID uint64 `json:"property_id"`
		StartDate  string `json:"start_date"`
		EndDate    string `json:"end_date"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.PropertyID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "property_id is required"})
	}
	start, err1 := time.Parse("2006-01-02", body.StartDate)
	end, err2 := time.Parse("2006-01-02", body.EndDate)
	if err1 != nil || err2 != nil || !end.After(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date/end_date"})
	}
	id, err := h.Facade.CreateBooking(c.Request().Context(), p, body.PropertyID, start, end)
	if err != nil {
		return respondLeaseError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"booking_id": id})
}

// ProposeDuration handles POST /v1/bookings/:id/duration.  The tenant
// proposes a rental duration in years and months for an accepted
// booking.  Returns the resulting booking status.
func (h *TenantHandler) ProposeDuration(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Years  uint8 `json:"years"`
		Months uint8 `json:"months"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Years == 0 && body.Months == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration is required"})
	}
	status, err := h.Facade.ProposeDuration(c.Request().Context(), p, bookingID, body.Years, body.Months)
	if err != nil {
		return respondLeaseError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// ListBookings handles GET /v1/my-bookings.  It returns all bookings
// created by the current tenant, newest first.
func (h *TenantHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Bookings.ListByTenant(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": details})
}

// GetBooking handles GET /v1/bookings/:id.  It returns the booking
// when the caller is its tenant or the property's owner: 404 when the
// booking does not exist, 403 when it belongs to neither party.
func (h *TenantHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	detail, err := h.Bookings.GetByIDForUser(c.Request().Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": detail})
}

// GetAgreement handles GET /v1/bookings/:id/agreement.  Both the
// tenant and the owner of the booking may fetch the generated
// agreement.
func (h *TenantHandler) GetAgreement(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	detail, err := h.Agreements.GetByBookingForUser(c.Request().Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "agreement not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch agreement"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": detail})
}

// RespondToAgreement handles POST /v1/agreements/:id/response.  The
// tenant signs or declines an agreement awaiting signature.  The body
// carries {"decision": "approved"|"rejected"}.
func (h *TenantHandler) RespondToAgreement(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	agreementID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid agreement id"})
	}
	var body struct {
		Decision string `json:"decision"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var approve bool
	switch body.Decision {
	case "approved":
		approve = true
	case "rejected":
		approve = false
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "decision must be approved or rejected"})
	}
	status, err := h.Facade.RespondToAgreement(c.Request().Context(), p, agreementID, approve)
	if err != nil {
		return respondLeaseError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}
