package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/etched-platform/etched-backend/internal/apierr"
	"github.com/etched-platform/etched-backend/internal/config"
	"github.com/etched-platform/etched-backend/internal/middleware"
	"github.com/etched-platform/etched-backend/internal/model"
	"github.com/etched-platform/etched-backend/internal/repository"
	"github.com/etched-platform/etched-backend/internal/workflow"
)

// AdminHandler bundles dependencies for the admin review surface: the
// validator application queue and platform statistics.
type AdminHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Requests *repository.ValidatorRequestRepo
	Pools    *repository.PoolRepo
	Certs    *repository.CertificateRepo
}

func NewAdminHandler(cfg config.Config, u *repository.UserRepo, vr *repository.ValidatorRequestRepo,
	p *repository.PoolRepo, cr *repository.CertificateRepo) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: u, Requests: vr, Pools: p, Certs: cr}
}

type validatorDecisionReq struct {
	Approve         bool    `json:"approve"`
	RejectionReason *string `json:"rejection_reason"`
}

// ListValidatorRequests handles GET /v1/admin/validator-requests: the
// pending review queue, oldest first, each with the requesting account.
func (h *AdminHandler) ListValidatorRequests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pending, err := h.Requests.ListPending(ctx)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	results := make([]echo.Map, 0, len(pending))
	for _, vr := range pending {
		u, err := h.Users.GetByID(ctx, vr.UserID)
		if err != nil {
			return apierr.Respond(c, apierr.Internal())
		}
		results = append(results, echo.Map{"request": vr, "user": publicUser(u)})
	}
	return c.JSON(http.StatusOK, results)
}

// DecideValidatorRequest handles POST /v1/admin/validator-requests/:id/decision.
// A request transitions exactly once; the repository update re-checks pending
// status so a concurrent decision loses cleanly.
func (h *AdminHandler) DecideValidatorRequest(c echo.Context) error {
	id := middleware.Identity(c)
	reqID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return apierr.Respond(c, apierr.BadRequest("invalid id"))
	}
	var req validatorDecisionReq
	if err := c.Bind(&req); err != nil {
		return apierr.Respond(c, apierr.BadRequest("invalid body"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vr, err := h.Requests.GetByID(ctx, reqID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierr.Respond(c, apierr.NotFound())
		}
		return apierr.Respond(c, apierr.Internal())
	}
	if err := workflow.CanDecideValidatorRequest(id, vr); err != nil {
		return apierr.Respond(c, err)
	}

	adminID, err := id.UserID()
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	status := model.RequestStatusApproved
	if !req.Approve {
		status = model.RequestStatusRejected
	}
	changed, err := h.Requests.Decide(ctx, reqID, adminID, status, req.RejectionReason)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	if !changed {
		return apierr.Respond(c, apierr.BadRequest("Request already processed"))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Validator request " + status,
		"status":  status,
	})
}

// ListValidators handles GET /v1/admin/validators: approved validators with
// their institutions.
func (h *AdminHandler) ListValidators(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, reqs, err := h.Requests.ListApprovedValidators(ctx)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	results := make([]echo.Map, 0, len(users))
	for i, u := range users {
		results = append(results, echo.Map{
			"user":             publicUser(u),
			"institution_name": reqs[i].InstitutionName,
			"institution_id":   reqs[i].InstitutionID,
			"approved_at":      reqs[i].ReviewedAt,
		})
	}
	return c.JSON(http.StatusOK, results)
}

// Stats handles GET /v1/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pending, err := h.Requests.CountByStatus(ctx, model.RequestStatusPending)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	approved, err := h.Requests.CountByStatus(ctx, model.RequestStatusApproved)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	pools, err := h.Pools.Count(ctx)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	minted, err := h.Certs.CountMinted(ctx)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"pending_requests":   pending,
		"total_validators":   approved,
		"total_pools":        pools,
		"total_certificates": minted,
		"admin_wallets":      h.Cfg.AdminWallets,
		"pool_cost_eth":      h.Cfg.PoolCostETH,
	})
}
