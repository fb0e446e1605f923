package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/etched-platform/etched-backend/internal/auth"
	"github.com/etched-platform/etched-backend/internal/config"
	"github.com/etched-platform/etched-backend/internal/handler"
	"github.com/etched-platform/etched-backend/internal/middleware"
	"github.com/etched-platform/etched-backend/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	Codec   *auth.TokenCodec
	Rdb     *redis.Client
	RateCfg config.RateLimitConfig
	Auth    *handler.AuthHandler
	Admin   *handler.AdminHandler
	Pools   *handler.PoolHandler
	Certs   *handler.CertificateHandler
}

// Register wires every route. Unauthenticated surfaces live under /v1/auth
// and the public lookups; everything else requires a Bearer token decoded by
// the Authenticate middleware before any handler logic runs.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Login surfaces are the brute-forceable ones; they get the Redis token
	// bucket in front.
	authGroup := e.Group("/v1/auth", middleware.RateLimit(d.RateCfg, d.Rdb))
	authGroup.POST("/register", d.Auth.Register)
	authGroup.POST("/login", d.Auth.Login)
	authGroup.POST("/nonce", d.Auth.RequestNonce)
	authGroup.POST("/verify", d.Auth.VerifyWallet)

	// Public lookups: pool info, pool by code, certificate verification and
	// platform stats need no session.
	e.GET("/v1/pools/info", d.Pools.Info)
	e.GET("/v1/pools/:code", d.Pools.Get)
	e.GET("/v1/certificates/verify/:hash", d.Certs.Verify)
	e.GET("/v1/stats", d.Certs.Stats)

	protected := e.Group("/v1", middleware.Authenticate(d.Codec))
	protected.GET("/me", d.Auth.Me)
	protected.POST("/me/wallet", d.Auth.ConnectWallet)
	protected.GET("/requests/my", d.Auth.MyRequest)

	protected.POST("/pools", d.Pools.Create)
	protected.GET("/pools/my", d.Pools.My)
	protected.POST("/pools/:id/toggle", d.Pools.Toggle)

	protected.POST("/pools/:code/certificates", d.Certs.Submit)
	protected.GET("/pools/:code/certificates", d.Certs.ListByPool)
	protected.POST("/certificates/:id/decision", d.Certs.Decide)
	protected.GET("/certificates/my", d.Certs.My)

	admin := protected.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/validator-requests", d.Admin.ListValidatorRequests)
	admin.POST("/validator-requests/:id/decision", d.Admin.DecideValidatorRequest)
	admin.GET("/validators", d.Admin.ListValidators)
	admin.GET("/stats", d.Admin.Stats)
}
