// Package apierr defines the error taxonomy shared by handlers, middleware
// and the workflow guard. Every failure a client can observe is one of five
// kinds, each carrying a machine-readable tag and a human message. Handlers
// should translate any error into a JSON response via Respond; unknown error
// values are reported as internal errors so that storage or crypto failures
// never leak details to the caller.
package apierr

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error is an API-visible failure. Status is the HTTP status code, Tag the
// stable machine-readable identifier and Message the human-readable text.
type Error struct {
	Status  int
	Tag     string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Unauthorized covers missing/invalid/expired tokens, failed logins and
// signature mismatches. Login failures deliberately reuse this single value
// so the response does not reveal whether the account exists.
func Unauthorized() *Error {
	return &Error{Status: http.StatusUnauthorized, Tag: "unauthorized", Message: "Unauthorized"}
}

// Forbidden means the caller is authenticated but not entitled to the entity.
func Forbidden() *Error {
	return &Error{Status: http.StatusForbidden, Tag: "forbidden", Message: "Forbidden"}
}

// BadRequest covers malformed input and business-rule violations such as
// "already processed" or "pool inactive". The message is client-facing.
func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Tag: "bad_request", Message: msg}
}

// NotFound means the referenced entity does not exist.
func NotFound() *Error {
	return &Error{Status: http.StatusNotFound, Tag: "not_found", Message: "Not found"}
}

// Internal covers storage or cryptographic failures not attributable to the
// caller's input.
func Internal() *Error {
	return &Error{Status: http.StatusInternalServerError, Tag: "internal_error", Message: "Internal server error"}
}

// Respond writes err as a JSON error response. Errors that are not *Error are
// mapped to Internal.
func Respond(c echo.Context, err error) error {
	e, ok := err.(*Error)
	if !ok {
		e = Internal()
	}
	return c.JSON(e.Status, echo.Map{"error": e.Tag, "message": e.Message})
}
