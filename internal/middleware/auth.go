package middleware // middleware provides shared request processing for handlers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/etched-platform/etched-backend/internal/apierr"
	"github.com/etched-platform/etched-backend/internal/auth"
)

// identityKey is the echo context key the authenticated identity is stored
// under.
const identityKey = "identity"

// Authenticate returns an Echo middleware that turns a Bearer token into an
// identity context before any handler logic runs. A missing or malformed
// Authorization header and any decode failure (bad signature, corruption,
// expiry) are all rejected as unauthorized; handlers downstream can rely on
// Identity(c) being non-nil.
func Authenticate(codec *auth.TokenCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return apierr.Respond(c, apierr.Unauthorized())
			}
			id, err := codec.Decode(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return apierr.Respond(c, apierr.Unauthorized())
			}
			c.Set(identityKey, &id)
			return next(c)
		}
	}
}

// Identity returns the identity stored by Authenticate, nil when the route
// is unauthenticated.
func Identity(c echo.Context) *auth.Identity {
	id, _ := c.Get(identityKey).(*auth.Identity)
	return id
}

// OptionalIdentity decodes a Bearer token when one is present but lets
// anonymous requests through. Used by registration, which is open but must
// reject admin sessions.
func OptionalIdentity(c echo.Context, codec *auth.TokenCodec) *auth.Identity {
	header := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	id, err := codec.Decode(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil
	}
	return &id
}
