// internal/database/health.go
//
// Readiness check for the PostgreSQL pool.
//
// Context
// -------
// The HTTP layer asks every Checker in parallel when /health/ready is hit.
// The database check pings through the sqlx handle, so a probe exercises
// the same database/sql path request handlers use.
//
// Notes
// -----
// • Each ping gets its own two-second budget, independent of the caller's.
// • Oxford commas, two spaces after periods.
package database

import (
	"context"
	"errors"
	"time"
)

// pinger is satisfied by *sqlx.DB and *sql.DB.
type pinger interface {
	PingContext(ctx context.Context) error
}

// Checker reports PostgreSQL reachability to the readiness endpoint.
type Checker struct {
	db      pinger
	timeout time.Duration
}

// NewChecker wraps db with a two-second ping budget.
func NewChecker(db pinger) *Checker {
	return &Checker{db: db, timeout: 2 * time.Second}
}

// Checker returns the readiness check for p, pinging through p.DB.
func (p *Pool) Checker() *Checker {
	if p == nil || p.DB == nil {
		return NewChecker(nil)
	}
	return NewChecker(p.DB)
}

// Name returns the component name.
func (c *Checker) Name() string { return "postgres" }

// Check verifies the connection with a bounded ping.
func (c *Checker) Check(ctx context.Context) error {
	if c.db == nil {
		return errors.New("database connection is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.db.PingContext(ctx)
}
