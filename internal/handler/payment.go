package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/renthub/home-rental/internal/lease"
	"github.com/renthub/home-rental/internal/queue"
	"github.com/renthub/home-rental/internal/repository"
	queuepublisher "github.com/renthub/home-rental/internal/service"
)

// PaymentHandler serves the deposit and rent payment endpoints plus
// the per-booking payment history.
type PaymentHandler struct {
	Facade     *lease.Facade
	Agreements *repository.AgreementRepo
	Payments   *repository.PaymentRepo
}

// NewPaymentHandler constructs a new PaymentHandler and panics if any dependency is nil
func NewPaymentHandler(facade *lease.Facade, agreements *repository.AgreementRepo, payments *repository.PaymentRepo) *PaymentHandler {
	if facade == nil || agreements == nil || payments == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Facade: facade, Agreements: agreements, Payments: payments}
}

// PayDeposit handles POST /v1/bookings/:id/deposit.  A successful
// deposit activates the lease in one transaction: the payment is
// recorded, the booking becomes active, the property is taken off the
// market and the agreement gains its start date.  A lease.activated
// event is then published so downstream consumers can react; publish
// failures never fail the request.
func (h *PaymentHandler) PayDeposit(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		AmountCents uint32 `json:"amount_cents"`
		ExternalRef string `json:"external_ref"`
		Notes       string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ExternalRef == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "external_ref is required"})
	}
	paymentID, err := h.Facade.PayDeposit(c.Request().Context(), p, bookingID, body.AmountCents, body.ExternalRef, body.Notes)
	if err != nil {
		return respondLeaseError(c, err)
	}

	// Best effort: look up the freshly activated agreement and publish
	// the event.  The lease is already committed at this point.
	if agr, lookupErr := h.Agreements.GetByBookingForUser(c.Request().Context(), bookingID, p.ID); lookupErr == nil {
		_ = queuepublisher.PublishLeaseActivated(c.Request().Context(), queue.LeaseActivatedEvent{
			BookingID:    bookingID,
			AgreementID:  agr.ID,
			PropertyID:   agr.PropertyID,
			TenantID:     agr.TenantID,
			OwnerID:      agr.OwnerID,
			PaymentID:    paymentID,
			DepositCents: agr.DepositCents,
			ExternalRef:  body.ExternalRef,
			ActivatedAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{"payment_id": paymentID, "status": "completed"})
}

// RecordRecurringPayment handles POST /v1/bookings/:id/payments.  It
// records a rent payment against an active lease.  The endpoint is
// fed by the payment provider callback, so it carries no ownership
// check beyond authentication.
func (h *PaymentHandler) RecordRecurringPayment(c echo.Context) error {
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		AmountCents uint32 `json:"amount_cents"`
		Method      string `json:"method"`
		MonthLabel  string `json:"month_label"`
		ExternalRef string `json:"external_ref"` // optional provider reference
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.AmountCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount_cents is required"})
	}
	paymentID, err := h.Facade.RecordRecurringPayment(c.Request().Context(), bookingID, body.AmountCents, body.Method, body.MonthLabel, body.ExternalRef)
	if err != nil {
		return respondLeaseError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"payment_id": paymentID})
}

// ListPayments handles GET /v1/bookings/:id/payments for tenants and
// owners of the booking.
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	items, err := h.Payments.ListByBookingForUser(c.Request().Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load payments"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
