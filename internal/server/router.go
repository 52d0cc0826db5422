// internal/server/router.go
//
// Root HTTP router.
//
// Context
// -------
// NewRouter wires the public surface of the service:
//
//	GET  /               service banner
//	GET  /health         liveness (no dependencies touched)
//	GET  /health/ready   readiness (every Checker, in parallel)
//	GET  /metrics        Prometheus scrape endpoint
//	*    /api/v1/...     bearer-token protected; /api/v1/docs plus the
//	                     request-handling layer passed in Deps.API.  When
//	                     audit logging is on, every request here is
//	                     written to the audit trail.
//
// Anything else answers a JSON 404.
//
// Middleware order (outermost first): request id, real ip, request log,
// recoverer, HTTPS redirect, security headers, rate limit, compression,
// CORS, and body-size cap.
//
// Notes
// -----
// • The router never reads the environment; everything comes from *Config.
// • Oxford commas, two spaces after periods.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/formapi/internal/auth"
	"github.com/yanizio/formapi/internal/config"
	mw "github.com/yanizio/formapi/internal/middleware"
	"github.com/yanizio/formapi/internal/requestinfo"
	"github.com/yanizio/formapi/internal/respond"
)

// ServiceName and Version appear in the banner and docs.
const (
	ServiceName = "Form.io PostgreSQL API Layer"
	Version     = "1.0.0"
)

// maxBody mirrors the 10 MB JSON body limit of the public API.
const maxBody = 10 << 20

// Deps are the collaborators the router needs besides configuration.
type Deps struct {
	Config   *config.Config
	Verifier *auth.Verifier
	Checkers []Checker
	// API is the request-handling layer mounted under /api/v1.  It may be
	// nil, in which case only /api/v1/docs exists.
	API http.Handler
	// Geo optionally adds a country to audit entries.
	Geo requestinfo.Locator
}

// NewRouter builds the root handler.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	started := time.Now()

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(mw.ForceHTTPS(cfg.IsProduction()))
	r.Use(mw.Security(cfg.IsProduction()))
	r.Use(mw.NewRateLimiter(cfg.RateLimit).Handler)
	r.Use(middleware.Compress(5))
	r.Use(mw.CORS(cfg.CORS))
	r.Use(middleware.RequestSize(maxBody))

	probes := &probes{cfg: cfg, checkers: d.Checkers, started: started}
	r.Get("/health", probes.liveness)
	r.Get("/health/ready", probes.readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/", banner)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(d.Verifier))
		if cfg.Features.AuditLogging {
			r.Use(requestinfo.Enrich(d.Geo))
			r.Use(requestinfo.Audit)
		}
		r.Get("/docs", docs)
		if d.API != nil {
			r.Mount("/", d.API)
		}
	})

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

func banner(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"service":   ServiceName,
		"version":   Version,
		"status":    "running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"docs":      "/api/v1/docs",
		"health":    "/health",
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusNotFound, map[string]string{
		"error":     "Not Found",
		"message":   "Route " + r.Method + " " + r.URL.RequestURI() + " not found",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// docs lists the endpoints served by the request-handling layer.
func docs(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"title":       ServiceName,
		"version":     Version,
		"description": "Custom API layer for integrating Form.io with PostgreSQL",
		"endpoints": map[string]map[string]string{
			"forms": {
				"GET /api/v1/forms":           "List all forms",
				"GET /api/v1/forms/:id":       "Get form by ID",
				"POST /api/v1/forms":          "Create new form",
				"PUT /api/v1/forms/:id":       "Update form",
				"DELETE /api/v1/forms/:id":    "Delete form",
				"POST /api/v1/forms/:id/sync": "Sync form with Form.io",
			},
			"submissions": {
				"GET /api/v1/submissions":               "List submissions with filtering",
				"GET /api/v1/submissions/:id":           "Get submission by ID",
				"POST /api/v1/submissions":              "Create new submission",
				"PUT /api/v1/submissions/:id":           "Update submission",
				"DELETE /api/v1/submissions/:id":        "Delete submission",
				"GET /api/v1/forms/:formId/submissions": "Get submissions for form",
			},
			"analytics": {
				"GET /api/v1/analytics/forms/:id/summary":  "Get form analytics",
				"GET /api/v1/analytics/submissions/trends": "Get submission trends",
				"GET /api/v1/analytics/forms/popular":      "Get popular forms",
			},
			"templates": {
				"GET /api/v1/templates":                  "List form templates",
				"GET /api/v1/templates/:id":              "Get template by ID",
				"POST /api/v1/templates":                 "Create new template",
				"POST /api/v1/templates/:id/instantiate": "Create form from template",
			},
		},
		"authentication": "Bearer token required for all API endpoints except /health",
	})
}
