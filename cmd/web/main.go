// cmd/web/main.go
//
// Form API – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load env vars (service-wide file → .env fallback).
//
//  2. Build the configuration snapshot: defaults, CONFIG_FILE, environment,
//     and finally the secret store (GCP Secret Manager or Vault).
//
//  3. Swap the bootstrap console logger for the configured one.
//
//  4. Validate the snapshot.  A production deployment missing required
//     fields stops here with one aggregated diagnostic.
//
//  5. Open the PostgreSQL pool and wait until it answers a ping.
//
//  6. Bind the HTTP listener and serve the router (health, metrics, and the
//     bearer-protected /api/v1 surface).
//
//  7. On SIGINT or SIGTERM: stop accepting connections, close the pool, and
//     exit 0, or exit 1 if that takes longer than SHUTDOWN_TIMEOUT.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanizio/formapi/internal/auth"
	"github.com/yanizio/formapi/internal/cache"
	"github.com/yanizio/formapi/internal/config"
	"github.com/yanizio/formapi/internal/database"
	"github.com/yanizio/formapi/internal/lifecycle"
	"github.com/yanizio/formapi/internal/logger"
	"github.com/yanizio/formapi/internal/requestinfo"
	"github.com/yanizio/formapi/internal/secrets"
	"github.com/yanizio/formapi/internal/server"
)

const serverEnvPath = "/usr/local/etc/formapi/formapi.env"

// loadEnv prefers the service-wide env file; on dev it falls back to .env.
// Variables already set in the process environment always win.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

func init() { loadEnv() }

func main() {
	os.Exit(run())
}

func run() int {
	boot := logger.Bootstrap()
	defer func() { _ = zap.L().Sync() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var (
		pool *database.Pool
		geo  *requestinfo.GeoDB
	)
	defer func() {
		if geo != nil {
			_ = geo.Close()
		}
	}()

	coord := lifecycle.New(lifecycle.Hooks{
		//
		// ── 1.  Configuration snapshot ──────────────────────────────────
		//
		Build: func(ctx context.Context) *config.Config {
			cfg := config.Build(ctx, boot, newResolver)

			if _, err := logger.New(cfg.Logging, zapcore.Lock(os.Stdout)); err != nil {
				boot.Warnw("configured logger unavailable, keeping console logger", "err", err)
			}
			if cfg.IsProduction() && cfg.UsesFallbackSecret() {
				zap.S().Warnw("JWT_SECRET is the insecure fallback; set JWT_SECRET or JWT_SECRET_SECRET_ID")
			}
			return cfg
		},

		//
		// ── 2.  Shared resources ────────────────────────────────────────
		//
		Acquire: func(ctx context.Context, cfg *config.Config) (lifecycle.Resource, error) {
			p, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return nil, err
			}
			pool = p
			return p, nil
		},

		//
		// ── 3.  HTTP front end ──────────────────────────────────────────
		//
		Listen: func(cfg *config.Config, _ lifecycle.Resource) (lifecycle.Listener, error) {
			var tokens *cache.LRU[string, *auth.Claims]
			if cfg.Features.Caching {
				tokens = cache.New[string, *auth.Claims](cfg.Cache.MaxItems, cfg.Cache.TTL)
			}
			verifier, err := auth.NewVerifier(cfg.Auth, tokens)
			if err != nil {
				return nil, err
			}

			deps := server.Deps{
				Config:   cfg,
				Verifier: verifier,
				Checkers: []server.Checker{pool.Checker()},
			}
			if path := cfg.Logging.GeoIPDatabase; path != "" && cfg.Features.AuditLogging {
				if geo, err = requestinfo.OpenGeo(path); err != nil {
					zap.S().Warnw("GeoIP database unavailable, audit entries carry no country", "path", path, "err", err)
				} else {
					deps.Geo = geo
				}
			}
			return server.New(cfg.ListenAddr(), server.NewRouter(deps)), nil
		},
	})

	return coord.Run(context.Background(), sigChan)
}

// newResolver builds the secret resolver from the environment-only
// snapshot.  Construction failures are handled by config.Build.
func newResolver(ctx context.Context, base *config.Config) (secrets.Resolver, error) {
	store, err := secrets.NewStore(ctx, base.SecretStore.Backend, base.ProjectID)
	if err != nil {
		return nil, err
	}
	return secrets.NewResolver(store, base.SecretStore.Timeout, zap.S()), nil
}
