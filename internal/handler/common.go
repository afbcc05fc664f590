package handler // handler defines http handlers

import (
	"errors" // errors provides sentinel values used in getUserID
	"net/http"
	"strconv" // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/renthub/home-rental/internal/lease"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id") // fetch user_id from context
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// principal builds a lease.Principal from the JWT claims the auth
// middleware stored in the context.
func principal(c echo.Context) (lease.Principal, error) {
	uid, err := getUserID(c)
	if err != nil {
		return lease.Principal{}, err
	}
	role, _ := c.Get("role").(string)
	return lease.Principal{ID: uid, Role: role}, nil
}

// respondLeaseError maps the orchestration core's typed outcomes to
// HTTP responses.  Unknown errors fall through to 500.
func respondLeaseError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, lease.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, lease.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, lease.ErrPropertyUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "property unavailable"})
	case errors.Is(err, lease.ErrAlreadyPaid):
		return c.JSON(http.StatusConflict, echo.Map{"error": "deposit already paid"})
	case errors.Is(err, lease.ErrDuplicateReference):
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment reference already recorded"})
	case errors.Is(err, lease.ErrDuplicateAgreement):
		return c.JSON(http.StatusConflict, echo.Map{"error": "agreement already exists"})
	case errors.Is(err, lease.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, lease.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
	}
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
