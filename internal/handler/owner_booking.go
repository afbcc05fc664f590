package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/renthub/home-rental/internal/lease"
	"github.com/renthub/home-rental/internal/model"
	"github.com/renthub/home-rental/internal/repository"
)

// OwnerHandler bundles the facade and repositories owners use to
// decide on booking requests, rule on duration proposals and manage
// active agreements.
type OwnerHandler struct {
	Facade   *lease.Facade           // orchestration entry point
	Bookings *repository.BookingRepo // read access to bookings
}

// NewOwnerHandler constructs a new OwnerHandler and panics if any dependency is nil
func NewOwnerHandler(facade *lease.Facade, bookings *repository.BookingRepo) *OwnerHandler {
	if facade == nil || bookings == nil {
		panic("nil dependency passed to NewOwnerHandler")
	}
	return &OwnerHandler{Facade: facade, Bookings: bookings}
}

// DecideBooking handles POST /v1/bookings/:id/decision.  The owner
// accepts or rejects a pending booking.  Acceptance generates the
// lease agreement in the same transaction; the body may carry utility
// rate overrides for it.  Rejection may carry a reason.
func (h *OwnerHandler) DecideBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Decision        string  `json:"decision"`
		Reason          string  `json:"reason"`
		ElectricityRate *uint32 `json:"electricity_rate"`
		WaterCharge     *uint32 `json:"water_charge"`
		GarbageCharge   *uint32 `json:"garbage_charge"`
		Rules           string  `json:"rules"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var accept bool
	switch body.Decision {
	case "accepted":
		accept = true
	case "rejected":
		accept = false
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "decision must be accepted or rejected"})
	}
	var ov *lease.UtilityOverrides
	if accept {
		ov = &lease.UtilityOverrides{
			ElectricityRate: body.ElectricityRate,
			WaterCharge:     body.WaterCharge,
			GarbageCharge:   body.GarbageCharge,
			Rules:           body.Rules,
		}
	}
	status, err := h.Facade.OwnerDecideBooking(c.Request().Context(), p, bookingID, accept, body.Reason, ov)
	if err != nil {
		return respondLeaseError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// ApproveDuration handles POST /v1/bookings/:id/duration/decision.
// The owner approves or rejects the tenant's proposed rental duration.
func (h *OwnerHandler) ApproveDuration(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Approved *bool `json:"approved"`
	}
	if err := c.Bind(&body); err != nil || body.Approved == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "approved is required"})
	}
	status, err := h.Facade.ApproveDuration(c.Request().Context(), p, bookingID, *body.Approved)
	if err != nil {
		return respondLeaseError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// SetAgreementStatus handles PATCH /v1/agreements/:id/status.  The
// owner terminates or suspends an active agreement; termination
// cascades the linked booking to cancelled.
func (h *OwnerHandler) SetAgreementStatus(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	agreementID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid agreement id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	target := model.AgreementStatus(body.Status)
	if target != model.AgreementTerminated && target != model.AgreementSuspended {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be terminated or suspended"})
	}
	status, err := h.Facade.SetAgreementStatus(c.Request().Context(), p, agreementID, target)
	if err != nil {
		return respondLeaseError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// ListBookings handles GET /v1/owner/bookings.  It returns all booking
// requests on properties owned by the caller, newest first.
func (h *OwnerHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Bookings.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": details})
}
