package main // Entry point package

import (
	"context" // Context for startup deadlines
	"log"     // Logging library
	"time"    // Durations for startup contexts

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/etched-platform/etched-backend/internal/auth"       // Nonce store, token codec, role resolution
	"github.com/etched-platform/etched-backend/internal/config"     // Environment config loader
	"github.com/etched-platform/etched-backend/internal/database"   // MySQL connection and schema
	"github.com/etched-platform/etched-backend/internal/handler"    // HTTP handlers
	"github.com/etched-platform/etched-backend/internal/repository" // Data access layer
	"github.com/etched-platform/etched-backend/internal/router"     // Route registration
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.CreateSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	if cfg.AdminPassword != "" {
		if err := database.SeedAdmin(ctx, db, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost); err != nil {
			cancel()
			log.Fatalf("seed admin: %v", err)
		}
	}
	cancel()

	users := repository.NewUserRepo(db)
	requests := repository.NewValidatorRequestRepo(db)
	pools := repository.NewPoolRepo(db)
	certs := repository.NewCertificateRepo(db)

	codec := auth.NewTokenCodec(cfg.JWTSecret)
	nonces := auth.NewNonceStore(cfg.NonceTTL)
	roles := auth.NewRoleResolver(cfg.AdminWallets, requests)

	rdb := config.NewRedisClient() // nil when Redis is absent; rate limiting degrades to pass-through
	rateCfg := config.LoadRateLimitConfig()

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Codec:   codec,
		Rdb:     rdb,
		RateCfg: rateCfg,
		Auth:    handler.NewAuthHandler(cfg, users, requests, nonces, codec, roles),
		Admin:   handler.NewAdminHandler(cfg, users, requests, pools, certs),
		Pools:   handler.NewPoolHandler(cfg, users, requests, pools, certs),
		Certs:   handler.NewCertificateHandler(users, requests, pools, certs),
	})

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
