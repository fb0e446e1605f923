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
	"github.com/etched-platform/etched-backend/internal/middleware"
	"github.com/etched-platform/etched-backend/internal/model"
	"github.com/etched-platform/etched-backend/internal/queue"
	"github.com/etched-platform/etched-backend/internal/repository"
	queue_publisher "github.com/etched-platform/etched-backend/internal/service"
	"github.com/etched-platform/etched-backend/internal/workflow"
)

// CertificateHandler bundles dependencies for submission, decision and
// public verification of certificates.
type CertificateHandler struct {
	Users    *repository.UserRepo
	Requests *repository.ValidatorRequestRepo
	Pools    *repository.PoolRepo
	Certs    *repository.CertificateRepo
}

func NewCertificateHandler(u *repository.UserRepo, vr *repository.ValidatorRequestRepo,
	p *repository.PoolRepo, cr *repository.CertificateRepo) *CertificateHandler {
	return &CertificateHandler{Users: u, Requests: vr, Pools: p, Certs: cr}
}

type submitCertificateReq struct {
	RecipientName   string  `json:"recipient_name"`
	RecipientWallet string  `json:"recipient_wallet"`
	CertificateType string  `json:"certificate_type"`
	DocumentHash    string  `json:"document_hash"`
	MetadataURI     *string `json:"metadata_uri"`
}

type certificateDecisionReq struct {
	Approve         bool    `json:"approve"`
	TxHash          *string `json:"tx_hash"`
	TokenID         *uint64 `json:"token_id"`
	RejectionReason *string `json:"rejection_reason"`
}

// Submit handles POST /v1/pools/:code/certificates. Wallet credential only;
// the pool must be active and the document hash must never have been
// submitted before, by anyone.
func (h *CertificateHandler) Submit(c echo.Context) error {
	id := middleware.Identity(c)
	code := strings.ToUpper(c.Param("code"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var pool *model.Pool
	if p, err := h.Pools.GetActiveByCode(ctx, code); err == nil {
		pool = &p
	} else if err != sql.ErrNoRows {
		return apierr.Respond(c, apierr.Internal())
	}
	if err := workflow.CanSubmitCertificate(id, pool); err != nil {
		return apierr.Respond(c, err)
	}

	var req submitCertificateReq
	if err := c.Bind(&req); err != nil {
		return apierr.Respond(c, apierr.BadRequest("invalid body"))
	}
	req.RecipientName = strings.TrimSpace(req.RecipientName)
	req.DocumentHash = strings.TrimSpace(req.DocumentHash)
	if req.RecipientName == "" || req.CertificateType == "" || req.DocumentHash == "" {
		return apierr.Respond(c, apierr.BadRequest("recipient_name, certificate_type and document_hash are required"))
	}
	if !auth.ValidAddress(strings.ToLower(req.RecipientWallet)) {
		return apierr.Respond(c, apierr.BadRequest("Invalid recipient wallet format"))
	}

	exists, err := h.Certs.HashExists(ctx, req.DocumentHash)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	if exists {
		return apierr.Respond(c, apierr.BadRequest("Certificate already submitted"))
	}

	certID, err := h.Certs.Create(ctx, &model.Certificate{
		PoolID:             pool.ID,
		CertificatorWallet: id.Subject,
		RecipientName:      req.RecipientName,
		RecipientWallet:    req.RecipientWallet,
		CertificateType:    req.CertificateType,
		DocumentHash:       req.DocumentHash,
		MetadataURI:        req.MetadataURI,
	})
	if err != nil {
		if err == repository.ErrHashExists {
			return apierr.Respond(c, apierr.BadRequest("Certificate already submitted"))
		}
		return apierr.Respond(c, apierr.Internal())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Certificate submitted successfully",
		"certificate": echo.Map{
			"id":            certID,
			"document_hash": req.DocumentHash,
			"status":        model.CertStatusPending,
		},
	})
}

// ListByPool handles GET /v1/pools/:code/certificates with an optional
// ?status= filter. Email callers must own the pool or be admin.
func (h *CertificateHandler) ListByPool(c echo.Context) error {
	id := middleware.Identity(c)
	code := strings.ToUpper(c.Param("code"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pool, err := h.Pools.GetByCode(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierr.Respond(c, apierr.NotFound())
		}
		return apierr.Respond(c, apierr.Internal())
	}
	if err := workflow.CanListPoolCertificates(id, pool); err != nil {
		return apierr.Respond(c, err)
	}

	certs, err := h.Certs.ListByPool(ctx, pool.ID, c.QueryParam("status"))
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	if certs == nil {
		certs = []model.Certificate{}
	}
	return c.JSON(http.StatusOK, certs)
}

// Decide handles POST /v1/certificates/:id/decision. Approval requires the
// on-chain references and moves the certificate to minted; rejection records
// the reason. Either way the transition happens exactly once, enforced by
// the conditional update in the repository.
func (h *CertificateHandler) Decide(c echo.Context) error {
	id := middleware.Identity(c)
	certID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return apierr.Respond(c, apierr.BadRequest("invalid id"))
	}
	var req certificateDecisionReq
	if err := c.Bind(&req); err != nil {
		return apierr.Respond(c, apierr.BadRequest("invalid body"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cert, err := h.Certs.GetByID(ctx, certID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierr.Respond(c, apierr.NotFound())
		}
		return apierr.Respond(c, apierr.Internal())
	}
	pool, err := h.Pools.GetByID(ctx, cert.PoolID)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	if err := workflow.CanDecideCertificate(id, cert, pool); err != nil {
		return apierr.Respond(c, err)
	}

	if !req.Approve {
		changed, err := h.Certs.Reject(ctx, certID, req.RejectionReason)
		if err != nil {
			return apierr.Respond(c, apierr.Internal())
		}
		if !changed {
			return apierr.Respond(c, apierr.BadRequest("Certificate already processed"))
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Certificate rejected",
			"status":  model.CertStatusRejected,
		})
	}

	if req.TxHash == nil || *req.TxHash == "" {
		return apierr.Respond(c, apierr.BadRequest("tx_hash required for approval"))
	}
	if req.TokenID == nil {
		return apierr.Respond(c, apierr.BadRequest("token_id required for approval"))
	}
	changed, err := h.Certs.Mint(ctx, certID, *req.TxHash, *req.TokenID)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	if !changed {
		return apierr.Respond(c, apierr.BadRequest("Certificate already processed"))
	}

	// Minting is committed; event delivery is best effort.
	_ = queue_publisher.PublishCertificateMinted(ctx, queue.CertificateMintedEvent{
		CertificateID:   certID,
		PoolID:          pool.ID,
		PoolCode:        pool.Code,
		ValidatorID:     pool.ValidatorID,
		RecipientName:   cert.RecipientName,
		RecipientWallet: cert.RecipientWallet,
		DocumentHash:    cert.DocumentHash,
		TokenID:         *req.TokenID,
		TxHash:          *req.TxHash,
		MintedAt:        time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Certificate approved and minted",
		"status":   model.CertStatusMinted,
		"token_id": req.TokenID,
		"tx_hash":  req.TxHash,
	})
}

// My handles GET /v1/certificates/my: a certificator wallet's submissions
// with their pool names and codes.
func (h *CertificateHandler) My(c echo.Context) error {
	id := middleware.Identity(c)
	if id.AuthType != auth.AuthTypeWallet {
		return apierr.Respond(c, apierr.BadRequest("Certificators must use wallet login"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	certs, err := h.Certs.ListByCertificator(ctx, id.Subject)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	results := make([]echo.Map, 0, len(certs))
	for _, cert := range certs {
		pool, err := h.Pools.GetByID(ctx, cert.PoolID)
		if err != nil {
			return apierr.Respond(c, apierr.Internal())
		}
		results = append(results, echo.Map{
			"certificate": cert,
			"pool_name":   pool.Name,
			"pool_code":   pool.Code,
		})
	}
	return c.JSON(http.StatusOK, results)
}

// Verify handles GET /v1/certificates/verify/:hash, the public check anyone
// can run against a document hash. Unknown or unminted hashes return
// valid=false rather than an error.
func (h *CertificateHandler) Verify(c echo.Context) error {
	hash := c.Param("hash")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cert, err := h.Certs.GetMintedByHash(ctx, hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusOK, echo.Map{
				"valid":   false,
				"message": "Certificate not found or not yet minted",
			})
		}
		return apierr.Respond(c, apierr.Internal())
	}
	pool, err := h.Pools.GetByID(ctx, cert.PoolID)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	vr, err := h.Requests.ApprovedByUser(ctx, pool.ValidatorID)
	if err != nil {
		return apierr.Respond(c, apierr.Internal())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid": true,
		"certificate": echo.Map{
			"recipient_name":   cert.RecipientName,
			"recipient_wallet": cert.RecipientWallet,
			"certificate_type": cert.CertificateType,
			"document_hash":    cert.DocumentHash,
			"token_id":         cert.TokenID,
			"tx_hash":          cert.TxHash,
			"minted_at":        cert.MintedAt,
		},
		"issuer": echo.Map{
			"institution_name": vr.InstitutionName,
			"institution_id":   vr.InstitutionID,
			"pool_name":        pool.Name,
		},
	})
}

// Stats handles GET /v1/stats, the public platform counters.
func (h *CertificateHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	validators, err := h.Requests.CountByStatus(ctx, model.RequestStatusApproved)
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
		"total_validators":   validators,
		"total_pools":        pools,
		"total_certificates": minted,
	})
}
