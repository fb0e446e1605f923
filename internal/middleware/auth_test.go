package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etched-platform/etched-backend/internal/auth"
	"github.com/etched-platform/etched-backend/internal/model"
)

func doRequest(t *testing.T, codec *auth.TokenCodec, header string) (*httptest.ResponseRecorder, *auth.Identity) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *auth.Identity
	handler := Authenticate(codec)(func(c echo.Context) error {
		seen = Identity(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, seen
}

func TestAuthenticateValidToken(t *testing.T) {
	codec := auth.NewTokenCodec("secret")
	raw, _, err := codec.Issue("42", model.RoleValidator, auth.AuthTypeEmail)
	require.NoError(t, err)

	rec, id := doRequest(t, codec, "Bearer "+raw)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, id)
	assert.Equal(t, "42", id.Subject)
	assert.Equal(t, model.RoleValidator, id.Role)
	assert.Equal(t, auth.AuthTypeEmail, id.AuthType)
}

func TestAuthenticateRejects(t *testing.T) {
	codec := auth.NewTokenCodec("secret")
	raw, _, err := auth.NewTokenCodec("other-secret").Issue("42", model.RoleValidator, auth.AuthTypeEmail)
	require.NoError(t, err)

	cases := map[string]string{
		"no header":      "",
		"not bearer":     "Token abc",
		"empty bearer":   "Bearer ",
		"foreign secret": "Bearer " + raw,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, id := doRequest(t, codec, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, id)
			assert.JSONEq(t, `{"error":"unauthorized","message":"Unauthorized"}`, rec.Body.String())
		})
	}
}

func TestOptionalIdentity(t *testing.T) {
	codec := auth.NewTokenCodec("secret")
	raw, _, err := codec.Issue("42", model.RoleValidator, auth.AuthTypeEmail)
	require.NoError(t, err)

	e := echo.New()

	newCtx := func(header string) echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return e.NewContext(req, httptest.NewRecorder())
	}

	assert.Nil(t, OptionalIdentity(newCtx(""), codec))
	assert.Nil(t, OptionalIdentity(newCtx("Bearer junk"), codec))

	id := OptionalIdentity(newCtx("Bearer "+raw), codec)
	require.NotNil(t, id)
	assert.Equal(t, "42", id.Subject)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(id *auth.Identity, roles ...string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if id != nil {
			c.Set(identityKey, id)
		}
		handler := RequireRole(roles...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, handler(c))
		return rec
	}

	admin := &auth.Identity{Subject: "1", Role: model.RoleAdmin, AuthType: auth.AuthTypeEmail}
	validator := &auth.Identity{Subject: "7", Role: model.RoleValidator, AuthType: auth.AuthTypeEmail}

	assert.Equal(t, http.StatusOK, run(admin, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, run(validator, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, run(nil, model.RoleAdmin).Code)
}
