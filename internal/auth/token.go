package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential kinds. Every token carries exactly one; the two authentication
// schemes funnel into the same claims shape and are told apart by this tag.
const (
	AuthTypeEmail  = "email"
	AuthTypeWallet = "wallet"
)

// Token lifetimes per credential kind. Wallet sessions are treated as
// higher-risk and live half as long as password sessions.
const (
	emailTokenTTL  = 24 * time.Hour
	walletTokenTTL = 12 * time.Hour
)

// ErrInvalidToken is returned by Decode for any signature mismatch,
// structural corruption or expiry. Callers map it to an unauthorized
// response without distinguishing the cause.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the per-request identity context derived from a valid token.
// Subject is a numeric account id for email credentials or a lowercase
// wallet address for wallet credentials. It is immutable once constructed;
// in particular the role is the one baked in at issuance and is trusted for
// the token's lifetime.
type Identity struct {
	Subject   string
	Role      string
	AuthType  string
	ExpiresAt time.Time
}

// UserID parses the subject as an account id. Only meaningful for email
// identities.
func (id Identity) UserID() (uint64, error) {
	return strconv.ParseUint(id.Subject, 10, 64)
}

// TokenCodec signs and verifies HS256 session tokens. The signing secret is
// process-wide configuration fixed at construction; there is no per-call
// override.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec returns a codec signing with the given secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Issue signs a token for the subject with the TTL matching the credential
// kind. Claims: sub, role, auth_type, exp, iat.
func (tc *TokenCodec) Issue(subject, role, authType string) (string, time.Time, error) {
	ttl := emailTokenTTL
	if authType == AuthTypeWallet {
		ttl = walletTokenTTL
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":       subject,
		"role":      role,
		"auth_type": authType,
		"exp":       exp.Unix(),
		"iat":       now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Decode verifies the token and returns the identity it carries. Expiry is
// enforced here, not by the caller. Any failure is ErrInvalidToken.
func (tc *TokenCodec) Decode(raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tc.secret, nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, ErrInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return Identity{}, ErrInvalidToken
	}
	authType, ok := claims["auth_type"].(string)
	if !ok || (authType != AuthTypeEmail && authType != AuthTypeWallet) {
		return Identity{}, ErrInvalidToken
	}
	expVal, ok := claims["exp"].(float64)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		Subject:   sub,
		Role:      role,
		AuthType:  authType,
		ExpiresAt: time.Unix(int64(expVal), 0).UTC(),
	}, nil
}
