// internal/server/probes.go
//
// Liveness and readiness endpoints.
//
// Context
// -------
//   - GET /health answers 200 while the process can serve HTTP at all.  It
//     touches no dependency, so an orchestrator never restarts the service
//     because the database is slow.
//   - GET /health/ready runs every Checker in parallel under one shared
//     timeout and answers 200 "ready" or 503 "not ready" with a
//     per-component status map.
//
// Notes
// -----
// • Check errors are logged at warn and reported as "down: <cause>".
// • Oxford commas, two spaces after periods.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/formapi/internal/config"
	"github.com/yanizio/formapi/internal/respond"
)

// readinessTimeout bounds the whole readiness round.
const readinessTimeout = 3 * time.Second

type probes struct {
	cfg      *config.Config
	checkers []Checker
	started  time.Time
}

// liveness responds with 200 OK while the process can serve HTTP at all.
func (p *probes) liveness(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": p.cfg.Mode,
		"uptime":      int64(time.Since(p.started).Seconds()),
		"features":    p.cfg.Features.Flags(),
	})
}

// readiness runs every checker in parallel and answers 503 if any fails.
func (p *probes) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		g      errgroup.Group
		mu     sync.Mutex
		status = make(map[string]string, len(p.checkers))
	)

	for _, c := range p.checkers {
		g.Go(func() error {
			err := c.Check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				zap.S().Warnw("health probe failed", "component", c.Name(), "err", err)
				status[c.Name()] = "down: " + err.Error()
				return err
			}
			status[c.Name()] = "up"
			return nil
		})
	}

	code, overall := http.StatusOK, "ready"
	if err := g.Wait(); err != nil {
		code, overall = http.StatusServiceUnavailable, "not ready"
	}

	respond.JSON(w, code, map[string]any{
		"status":     overall,
		"components": status,
	})
}
