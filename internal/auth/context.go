// internal/auth/context.go
//
// Request-scoped identity helpers.
//
// Usage
// -----
//     // Middleware attaches verified claims.
//     ctx = auth.WithClaims(ctx, claims)
//
//     // Handlers read them back.
//     c, ok := auth.ClaimsFrom(ctx)   // c.Subject, c.Role
//
// Notes
// -----
// • A nil *Claims is never stored; ClaimsFrom reports ok == false instead.
// • Oxford commas, two spaces after periods.

package auth

import "context"

// claimsKey is unexported to avoid context-key collisions.
type claimsKey struct{}

// WithClaims returns a new context carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	if c == nil {
		return ctx
	}
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom extracts the verified claims from ctx.  It returns (nil, false)
// if none are set or the stored value has the wrong type.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}
