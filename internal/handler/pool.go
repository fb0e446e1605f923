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

// codeRetryCap bounds code regeneration on collision. With a 32-symbol
// alphabet and 6 characters collisions are vanishingly rare; hitting the cap
// means something is wrong with the RNG or the table, not bad luck.
const codeRetryCap = 10

// PoolHandler bundles dependencies for the pool endpoints.
type PoolHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Requests *repository.ValidatorRequestRepo
	Pools    *repository.PoolRepo
	Certs    *repository.CertificateRepo
}

func NewPoolHandler(cfg config.Config, u *repository.UserRepo, vr *repository.ValidatorRequestRepo,
	p *repository.PoolRepo, cr *repository.CertificateRepo) *PoolHandler {
	return &PoolHandler{Cfg: cfg, Users: u, Requests: vr, Pools: p, Certs: cr}
}

type createPoolReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	TxHash      *string `json:"tx_hash"`
}

type poolResp struct {
	ID              uint64    `json:"id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	ValidatorName   string    `json:"validator_name"`
	InstitutionName string    `json:"institution_name"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Create handles POST /v1/pools. Only an email-credentialed validator with
// an approved request and a linked wallet may create one; the generated code
// is checked for uniqueness and regenerated on collision.
func (h *PoolHandler) Create(c echo.Context) error {
	id := middleware.Identity(c)
	uid, err := id.UserID()
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	var req createPoolReq
	if err := c.Bind(&req); err != nil {
		return apierr.Respond(c, apierr.BadRequest("invalid body"))
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apierr.Respond(c, apierr.BadRequest("name is required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var approved *model.ValidatorRequest
	if vr, err := h.Requests.ApprovedByUser(ctx, uid); err == nil {
		approved = &vr
	} else if err != sql.ErrNoRows {
		return apierr.Respond(c, apierr.Internal())
	}
	owner, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	if err := workflow.CanCreatePool(id, approved, owner); err != nil {
		return apierr.Respond(c, err)
	}

	var poolID uint64
	var code string
	for attempt := 0; attempt < codeRetryCap; attempt++ {
		code, err = utils.NewPoolCode()
		if err != nil {
			return apierr.Respond(c, apierr.Internal())
		}
		exists, err := h.Pools.CodeExists(ctx, code)
		if err != nil {
			return apierr.Respond(c, apierr.Internal())
		}
		if exists {
			continue
		}
		poolID, err = h.Pools.Create(ctx, code, uid, req.Name, req.Description, req.TxHash)
		if err == repository.ErrCodeExists {
			continue // lost a race on the unique key, take another code
		}
		if err != nil {
			return apierr.Respond(c, apierr.Internal())
		}
		break
	}
	if poolID == 0 {
		return apierr.Respond(c, apierr.Internal())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Pool created successfully",
		"pool": echo.Map{
			"id":      poolID,
			"code":    code,
			"name":    req.Name,
			"tx_hash": req.TxHash,
		},
		"institution_name": approved.InstitutionName,
	})
}

// Get handles GET /v1/pools/:code, the public lookup certificators use
// before submitting. Only active pools resolve.
func (h *PoolHandler) Get(c echo.Context) error {
	code := strings.ToUpper(c.Param("code"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pool, err := h.Pools.GetActiveByCode(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierr.Respond(c, apierr.NotFound())
		}
		return apierr.Respond(c, apierr.Internal())
	}
	validator, err := h.Users.GetByID(ctx, pool.ValidatorID)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	vr, err := h.Requests.ApprovedByUser(ctx, pool.ValidatorID)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	return c.JSON(http.StatusOK, poolResp{
		ID:              pool.ID,
		Code:            pool.Code,
		Name:            pool.Name,
		Description:     pool.Description,
		ValidatorName:   validator.Username,
		InstitutionName: vr.InstitutionName,
		IsActive:        pool.IsActive,
		CreatedAt:       pool.CreatedAt,
	})
}

// My handles GET /v1/pools/my: the validator's pools with pending/minted
// certificate counters.
func (h *PoolHandler) My(c echo.Context) error {
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

	pools, err := h.Pools.ListByValidator(ctx, uid)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	results := make([]echo.Map, 0, len(pools))
	for _, p := range pools {
		pending, err := h.Certs.CountByPoolStatus(ctx, p.ID, model.CertStatusPending)
		if err != nil {
			return apierr.Respond(c, apierr.Internal())
		}
		minted, err := h.Certs.CountByPoolStatus(ctx, p.ID, model.CertStatusMinted)
		if err != nil {
			return apierr.Respond(c, apierr.Internal())
		}
		results = append(results, echo.Map{
			"pool":                 p,
			"pending_certificates": pending,
			"minted_certificates":  minted,
		})
	}
	return c.JSON(http.StatusOK, results)
}

// Toggle handles POST /v1/pools/:id/toggle: the owning validator flips the
// activation flag, opening or closing the pool for submissions.
func (h *PoolHandler) Toggle(c echo.Context) error {
	id := middleware.Identity(c)
	poolID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return apierr.Respond(c, apierr.BadRequest("invalid id"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pool, err := h.Pools.GetByID(ctx, poolID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierr.Respond(c, apierr.NotFound())
		}
		return apierr.Respond(c, apierr.Internal())
	}
	if err := workflow.CanTogglePool(id, pool); err != nil {
		return apierr.Respond(c, err)
	}

	active := !pool.IsActive
	if err := h.Pools.SetActive(ctx, poolID, active); err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	msg := "Pool deactivated"
	if active {
		msg = "Pool activated"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "is_active": active})
}

// Info handles GET /v1/pools/info: config clients need before creating a
// pool on-chain.
func (h *PoolHandler) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"admin_wallets": h.Cfg.AdminWallets,
		"pool_cost_eth": h.Cfg.PoolCostETH,
	})
}
