package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/renthub/home-rental/internal/handler"    // import the handlers that implement business logic
	"github.com/renthub/home-rental/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to issue a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Register a POST endpoint to log out using a refresh token.  Logout does
	// not require JWT authentication; the handler accepts a JSON body
	// containing a `refresh_token` and will invalidate that token.
	g.POST("/logout", a.Logout)

	// Create another group for routes that require a valid access token.  All
	// handlers registered on this group will execute the JWTAuth middleware
	// before being invoked.  Protected endpoints live under /v1.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Any authenticated role may inspect its own session.  The middleware
	// rejects requests with missing or unknown roles.
	auth.Use(middleware.RequireRole("OWNER", "TENANT", "ADMIN"))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)

	// Additionally map POST /v1/logout to the same handler.  This route lives
	// at the top level (outside of the protected group) so it does not
	// require a JWT.  Clients can therefore call either /v1/auth/logout or
	// /v1/logout with a valid refresh token in the body to terminate a
	// session.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  Any extra middleware passed in (typically the Redis
// response cache) is applied to these routes only.  These routes do not
// apply JWT or role middleware and are intended for guest users.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mws...)
	// Expose all listings currently accepting bookings
	g.GET("/properties", b.ListAvailable)
	// Property details by id.  Authentication is not required so that guests
	// can inspect a listing before registering.
	g.GET("/properties/:id", b.GetProperty)
}

// RegisterShared registers endpoints available to every authenticated role:
// per-booking payment history, the notification feed and mark-as-read.
// Ownership of the underlying records is enforced in the handlers and
// repositories rather than at the routing layer.
func RegisterShared(e *echo.Echo, p *handler.PaymentHandler, n *handler.NotificationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER", "TENANT", "ADMIN"),
	)
	// Payment history for a booking, visible to its tenant and owner.
	g.GET("/bookings/:id/payments", p.ListPayments)
	// Recurring rent payments are recorded by the payment provider callback.
	g.POST("/bookings/:id/payments", p.RecordRecurringPayment)
	// Notification feed for the authenticated user.
	g.GET("/notifications", n.List)
	g.POST("/notifications/:id/read", n.MarkRead)
}
