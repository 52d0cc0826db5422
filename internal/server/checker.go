// internal/server/checker.go
//
// Dependency contract for the readiness probe.  internal/database supplies
// the PostgreSQL implementation; tests use stubs.
package server

import "context"

// Checker defines the contract for any dependency reported by the
// readiness probe.
type Checker interface {
	// Name returns the component identifier (e.g., "postgres").
	Name() string
	// Check returns nil if healthy.  It must honour ctx.
	Check(ctx context.Context) error
}
