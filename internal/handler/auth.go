package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/etched-platform/etched-backend/internal/apierr"
	"github.com/etched-platform/etched-backend/internal/auth"
	"github.com/etched-platform/etched-backend/internal/config"
	"github.com/etched-platform/etched-backend/internal/middleware"
	"github.com/etched-platform/etched-backend/internal/model"
	"github.com/etched-platform/etched-backend/internal/repository"
	"github.com/etched-platform/etched-backend/internal/utils"
	"github.com/etched-platform/etched-backend/internal/workflow"
)

// AuthHandler bundles dependencies for the authentication endpoints: the two
// login paths (email/password and wallet challenge/response), registration,
// wallet linking and the profile endpoint.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Requests *repository.ValidatorRequestRepo
	Nonces   *auth.NonceStore
	Codec    *auth.TokenCodec
	Roles    *auth.RoleResolver
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, vr *repository.ValidatorRequestRepo,
	n *auth.NonceStore, tc *auth.TokenCodec, rr *auth.RoleResolver) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Requests: vr, Nonces: n, Codec: tc, Roles: rr}
}

// ----- DTOs -----

type nonceReq struct {
	Address string `json:"address"`
}
type nonceResp struct {
	Nonce   string `json:"nonce"`
	Message string `json:"message"`
}
type verifyReq struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}
type verifyResp struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}
type registerReq struct {
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	Username        string  `json:"username"`
	InstitutionName string  `json:"institution_name"`
	InstitutionID   string  `json:"institution_id"`
	DocumentURL     *string `json:"document_url"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type connectWalletReq struct {
	WalletAddress string `json:"wallet_address"`
}

type userPart struct {
	ID            uint64  `json:"id"`
	Email         string  `json:"email"`
	Username      string  `json:"username"`
	Role          string  `json:"role"`
	WalletAddress *string `json:"wallet_address"`
}

func publicUser(u model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role, WalletAddress: u.WalletAddress}
}

// RequestNonce handles POST /v1/auth/nonce. It records a fresh one-time
// challenge for the address and returns the exact message the wallet must
// sign. Reissuing replaces any previous challenge for that address.
func (h *AuthHandler) RequestNonce(c echo.Context) error {
	var req nonceReq
	if err := c.Bind(&req); err != nil {
		return apierr.Respond(c, apierr.BadRequest("invalid body"))
	}
	address := strings.ToLower(strings.TrimSpace(req.Address))
	if !auth.ValidAddress(address) {
		return apierr.Respond(c, apierr.BadRequest("Invalid address format"))
	}
	nonce := h.Nonces.Issue(address)
	return c.JSON(http.StatusOK, nonceResp{Nonce: nonce, Message: auth.ChallengeMessage(nonce)})
}

// VerifyWallet handles POST /v1/auth/verify. The nonce is consumed before
// verification, so a failed attempt burns the challenge and the client must
// restart from RequestNonce; there is no replay window against a stale
// nonce.
func (h *AuthHandler) VerifyWallet(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return apierr.Respond(c, apierr.BadRequest("invalid body"))
	}
	address := strings.ToLower(strings.TrimSpace(req.Address))

	nonce, ok := h.Nonces.Consume(address)
	if !ok {
		return apierr.Respond(c, apierr.BadRequest("Nonce not found"))
	}

	recovered, err := auth.RecoverAddress(auth.ChallengeMessage(nonce), req.Signature)
	if err != nil {
		switch err {
		case auth.ErrSignatureFormat:
			return apierr.Respond(c, apierr.BadRequest("Invalid signature format"))
		default:
			return apierr.Respond(c, apierr.BadRequest("Signature recovery failed"))
		}
	}
	if recovered != address {
		return apierr.Respond(c, apierr.Unauthorized())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := h.Roles.Resolve(ctx, address)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	token, _, err := h.Codec.Issue(address, role, auth.AuthTypeWallet)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	return c.JSON(http.StatusOK, verifyResp{Token: token, Role: role})
}

// Register handles POST /v1/auth/register: creates a validator account and
// its pending validator request in one step, then returns a session token so
// the institution can track its application immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	if err := workflow.CanRegister(middleware.OptionalIdentity(c, h.Codec)); err != nil {
		return apierr.Respond(c, err)
	}
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return apierr.Respond(c, apierr.BadRequest("invalid body"))
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	req.InstitutionName = strings.TrimSpace(req.InstitutionName)
	if req.Email == "" || req.Password == "" || req.Username == "" || req.InstitutionName == "" {
		return apierr.Respond(c, apierr.BadRequest("email, password, username and institution_name are required"))
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, hash, req.Username, model.RoleValidator)
	if err != nil {
		if err == repository.ErrEmailExists {
			return apierr.Respond(c, apierr.BadRequest("Email already registered"))
		}
		return apierr.Respond(c, apierr.Internal())
	}
	if _, err := h.Requests.Create(ctx, uid, req.InstitutionName, req.InstitutionID, req.DocumentURL); err != nil {
		return apierr.Respond(c, apierr.Internal())
	}

	token, _, err := h.Codec.Issue(strconv.FormatUint(uid, 10), model.RoleValidator, auth.AuthTypeEmail)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"token": token,
		"role":  model.RoleValidator,
		"user": userPart{
			ID: uid, Email: req.Email, Username: req.Username, Role: model.RoleValidator,
		},
		"request_status": model.RequestStatusPending,
	})
}

// Login handles POST /v1/auth/login. Unknown email and wrong password fail
// identically so the response carries no user-enumeration signal.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apierr.Respond(c, apierr.BadRequest("invalid body"))
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return apierr.Respond(c, apierr.BadRequest("email and password are required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierr.Respond(c, apierr.Unauthorized())
		}
		return apierr.Respond(c, apierr.Internal())
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apierr.Respond(c, apierr.Unauthorized())
	}

	token, _, err := h.Codec.Issue(strconv.FormatUint(u.ID, 10), u.Role, auth.AuthTypeEmail)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"role":  u.Role,
		"user":  publicUser(u),
	})
}

// ConnectWallet handles POST /v1/me/wallet: links a wallet address to the
// authenticated email account. A pool cannot be created until this has
// happened.
func (h *AuthHandler) ConnectWallet(c echo.Context) error {
	id := middleware.Identity(c)
	if err := workflow.CanConnectWallet(id); err != nil {
		return apierr.Respond(c, err)
	}
	var req connectWalletReq
	if err := c.Bind(&req); err != nil {
		return apierr.Respond(c, apierr.BadRequest("invalid body"))
	}
	address := strings.ToLower(strings.TrimSpace(req.WalletAddress))
	if !auth.ValidAddress(address) {
		return apierr.Respond(c, apierr.BadRequest("Invalid address format"))
	}
	uid, err := id.UserID()
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateWallet(ctx, uid, address); err != nil {
		if err == repository.ErrWalletLinked {
			return apierr.Respond(c, apierr.BadRequest("Wallet already linked to another account"))
		}
		return apierr.Respond(c, apierr.Internal())
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	return c.JSON(http.StatusOK, echo.Map{"user": publicUser(u)})
}

// Me handles GET /v1/me. Email identities get their account row and
// validator request; wallet identities only have the token's claims to
// report.
func (h *AuthHandler) Me(c echo.Context) error {
	id := middleware.Identity(c)

	if id.AuthType == auth.AuthTypeWallet {
		return c.JSON(http.StatusOK, echo.Map{
			"address":   id.Subject,
			"role":      id.Role,
			"auth_type": id.AuthType,
		})
	}

	uid, err := id.UserID()
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	resp := echo.Map{"user": publicUser(u), "auth_type": id.AuthType}
	if vr, err := h.Requests.GetByUser(ctx, uid); err == nil {
		resp["validator_request"] = vr
	}
	return c.JSON(http.StatusOK, resp)
}

// MyRequest handles GET /v1/requests/my: the caller's validator request.
func (h *AuthHandler) MyRequest(c echo.Context) error {
	id := middleware.Identity(c)
	if id.AuthType != auth.AuthTypeEmail {
		return apierr.Respond(c, apierr.BadRequest("Validators must use email login"))
	}
	uid, err := id.UserID()
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vr, err := h.Requests.GetByUser(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierr.Respond(c, apierr.NotFound())
		}
		return apierr.Respond(c, apierr.Internal())
	}
	return c.JSON(http.StatusOK, vr)
}
