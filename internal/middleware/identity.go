package middleware

// identity.go holds the helper that resolves the authenticated user for
// rate-limit keying.  JWTAuth stores the raw "sub" claim under the
// context key "user_id"; depending on how the token was encoded that
// value arrives as a float64 or a string, so both forms are handled.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's ID as a string, or
// "anon" for unauthenticated requests.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return "anon"
}
