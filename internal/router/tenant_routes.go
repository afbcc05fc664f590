package router

import (
	"github.com/labstack/echo/v4"

	"github.com/renthub/home-rental/internal/handler"
	"github.com/renthub/home-rental/internal/middleware"
)

// RegisterTenant registers tenant-scoped endpoints under /v1.  All routes
// require a valid JWT and the TENANT role.  Tenants can request bookings,
// propose rental durations, sign or decline agreements, pay the security
// deposit and view their own bookings.
func RegisterTenant(e *echo.Echo, h *handler.TenantHandler, p *handler.PaymentHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("TENANT"),
	)
	// Note: GET /v1/properties and GET /v1/properties/:id are registered on
	// the public router so that guests can browse listings.  Tenant-specific
	// endpoints begin here.
	g.POST("/bookings", h.CreateBooking)
	g.POST("/bookings/:id/duration", h.ProposeDuration)
	g.POST("/agreements/:id/response", h.RespondToAgreement)
	g.POST("/bookings/:id/deposit", p.PayDeposit)
	g.GET("/my-bookings", h.ListBookings)

	// Booking and agreement detail endpoints for tenants.  These allow a
	// tenant to inspect a booking belonging to themselves together with the
	// agreement generated for it.  Ownership is validated within the handler.
	g.GET("/bookings/:id", h.GetBooking)
	g.GET("/bookings/:id/agreement", h.GetAgreement)
}
