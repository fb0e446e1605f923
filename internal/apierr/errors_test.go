package apierr

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, Respond(c, err))
	return rec
}

func TestRespondKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{Unauthorized(), http.StatusUnauthorized, `{"error":"unauthorized","message":"Unauthorized"}`},
		{Forbidden(), http.StatusForbidden, `{"error":"forbidden","message":"Forbidden"}`},
		{BadRequest("Nonce not found"), http.StatusBadRequest, `{"error":"bad_request","message":"Nonce not found"}`},
		{NotFound(), http.StatusNotFound, `{"error":"not_found","message":"Not found"}`},
		{Internal(), http.StatusInternalServerError, `{"error":"internal_error","message":"Internal server error"}`},
	}
	for _, tc := range cases {
		rec := respond(t, tc.err)
		assert.Equal(t, tc.status, rec.Code)
		assert.JSONEq(t, tc.body, rec.Body.String())
	}
}

// Unknown error values must never leak their text to the client.
func TestRespondUnknownError(t *testing.T) {
	rec := respond(t, errors.New("dial tcp 127.0.0.1:3306: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_error","message":"Internal server error"}`, rec.Body.String())
}
