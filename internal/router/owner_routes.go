package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/renthub/home-rental/internal/handler"    // owner handlers
	"github.com/renthub/home-rental/internal/middleware" // JWT + role middlewares
)

// RegisterOwner registers OWNER-scoped endpoints under /v1.
// All routes require a valid JWT and OWNER role.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, pr *handler.PropertyHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	// ---- Properties ----
	g.POST("/properties", pr.CreateProperty)
	g.PATCH("/properties/:id", pr.UpdateProperty)
	g.GET("/my-properties", pr.ListMyProperties)
	// NOTE: Listing available properties is handled by the public browse API
	// (GET /v1/properties), so no owner-scoped list of all listings exists.

	// ---- Bookings ----
	g.POST("/bookings/:id/decision", o.DecideBooking)
	g.POST("/bookings/:id/duration/decision", o.ApproveDuration)
	g.GET("/owner/bookings", o.ListBookings)

	// ---- Agreements ----
	// Owners may terminate or suspend an active agreement.  Termination
	// cascades the linked booking to cancelled.
	g.PATCH("/agreements/:id/status", o.SetAgreementStatus)
}
