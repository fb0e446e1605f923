package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/etched-platform/etched-backend/internal/apierr"
)

// RequireRole returns a middleware that enforces that the authenticated
// identity carries one of the given roles. The role checked is the one baked
// into the token at issuance; approval-state changes after issuance do not
// take effect until the next login. Must run after Authenticate.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := Identity(c)
			if id == nil || !allowed[id.Role] {
				return apierr.Respond(c, apierr.Forbidden())
			}
			return next(c)
		}
	}
}
