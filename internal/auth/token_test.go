package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etched-platform/etched-backend/internal/model"
)

const testSecret = "test-signing-secret"

func TestTokenRoundTripEmail(t *testing.T) {
	tc := NewTokenCodec(testSecret)

	raw, exp, err := tc.Issue("42", model.RoleValidator, AuthTypeEmail)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	id, err := tc.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", id.Subject)
	assert.Equal(t, model.RoleValidator, id.Role)
	assert.Equal(t, AuthTypeEmail, id.AuthType)
	assert.WithinDuration(t, exp, id.ExpiresAt, time.Second)

	uid, err := id.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestTokenRoundTripWallet(t *testing.T) {
	tc := NewTokenCodec(testSecret)
	addr := "0x52908400098527886e0f7030069857d2e4169ee7"

	raw, _, err := tc.Issue(addr, model.RoleCertificator, AuthTypeWallet)
	require.NoError(t, err)

	id, err := tc.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, addr, id.Subject)
	assert.Equal(t, model.RoleCertificator, id.Role)
	assert.Equal(t, AuthTypeWallet, id.AuthType)
}

func TestTokenLifetimePerCredentialKind(t *testing.T) {
	tc := NewTokenCodec(testSecret)

	_, emailExp, err := tc.Issue("1", model.RoleValidator, AuthTypeEmail)
	require.NoError(t, err)
	_, walletExp, err := tc.Issue("0xabc", model.RoleCertificator, AuthTypeWallet)
	require.NoError(t, err)

	now := time.Now()
	assert.WithinDuration(t, now.Add(24*time.Hour), emailExp, time.Minute)
	assert.WithinDuration(t, now.Add(12*time.Hour), walletExp, time.Minute)
}

func TestTokenWrongSecret(t *testing.T) {
	raw, _, err := NewTokenCodec(testSecret).Issue("1", model.RoleAdmin, AuthTypeEmail)
	require.NoError(t, err)

	_, err = NewTokenCodec("different-secret").Decode(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	tc := NewTokenCodec(testSecret)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tc.Decode(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestTokenExpired(t *testing.T) {
	tc := NewTokenCodec(testSecret)

	claims := jwt.MapClaims{
		"sub":       "1",
		"role":      model.RoleValidator,
		"auth_type": AuthTypeEmail,
		"exp":       time.Now().Add(-time.Hour).Unix(),
		"iat":       time.Now().Add(-2 * time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = tc.Decode(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsMissingClaims(t *testing.T) {
	tc := NewTokenCodec(testSecret)

	sign := func(claims jwt.MapClaims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return raw
	}
	exp := time.Now().Add(time.Hour).Unix()

	cases := map[string]jwt.MapClaims{
		"no subject":        {"role": "validator", "auth_type": "email", "exp": exp},
		"no role":           {"sub": "1", "auth_type": "email", "exp": exp},
		"no auth type":      {"sub": "1", "role": "validator", "exp": exp},
		"unknown auth type": {"sub": "1", "role": "validator", "auth_type": "ldap", "exp": exp},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tc.Decode(sign(claims))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenRejectsNoneAlgorithm(t *testing.T) {
	tc := NewTokenCodec(testSecret)

	claims := jwt.MapClaims{
		"sub":       "1",
		"role":      model.RoleAdmin,
		"auth_type": AuthTypeEmail,
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tc.Decode(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserIDNonNumericSubject(t *testing.T) {
	id := Identity{Subject: "0x52908400098527886e0f7030069857d2e4169ee7"}
	_, err := id.UserID()
	assert.Error(t, err)
}
