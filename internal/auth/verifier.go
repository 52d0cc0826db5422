// internal/auth/verifier.go
//
// HS256 bearer-token verification.
//
// Context
// -------
// The Verifier signs and checks tokens with JWT_SECRET (possibly replaced
// by the secret overlay).  Only HS256 is accepted, so a token that names
// "none" or an asymmetric algorithm is rejected before its signature is
// looked at.
//
// When CACHING_ENABLED is on, accepted tokens are kept in a TTL LRU
// (internal/cache) keyed by the raw token.  A cached entry is still checked
// against its own expiry on every hit.
//
// Usage
// -----
//
//	v, err := auth.NewVerifier(cfg.Auth, tokens)
//	claims, err := v.Verify(raw)
//
// Notes
// -----
// • JWT_EXPIRES_IN accepts Go durations, whole days ("7d"), or seconds.
// • Oxford commas, two spaces after periods.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yanizio/formapi/internal/cache"
	"github.com/yanizio/formapi/internal/config"
)

// Common errors for bearer-token verification.
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrTokenSigningFailed = errors.New("failed to sign token")
	ErrMissingSecret      = errors.New("auth secret is empty")
)

// DefaultLifetime applies when JWT_EXPIRES_IN cannot be parsed.
const DefaultLifetime = 24 * time.Hour

// Claims are the JWT claims accepted on /api/v1.
type Claims struct {
	jwt.RegisteredClaims

	// Role is optional; handlers decide what it means.
	Role string `json:"role,omitempty"`
}

// Verifier checks HS256 bearer tokens signed with the configured secret.
type Verifier struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
	tokens   *cache.LRU[string, *Claims]
}

// NewVerifier builds a verifier from the auth settings.  tokens may be nil,
// in which case every request pays for a signature check.
func NewVerifier(cfg config.Auth, tokens *cache.LRU[string, *Claims]) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	return &Verifier{
		secret:   []byte(cfg.Secret),
		lifetime: ParseLifetime(cfg.ExpiresIn),
		now:      time.Now,
		tokens:   tokens,
	}, nil
}

// Lifetime is the parsed JWT_EXPIRES_IN value.
func (v *Verifier) Lifetime() time.Duration { return v.lifetime }

// Issue signs a token for subject that expires after the configured
// lifetime.
func (v *Verifier) Issue(subject, role string) (string, error) {
	now := v.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.lifetime)),
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", ErrTokenSigningFailed
	}
	return signed, nil
}

// Verify validates raw and returns its claims.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	if v.tokens != nil {
		if c, ok := v.tokens.Get(raw); ok && !v.expired(c) {
			return c, nil
		}
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if v.tokens != nil {
		v.tokens.Add(raw, claims)
	}
	return claims, nil
}

func (v *Verifier) expired(c *Claims) bool {
	return c.ExpiresAt != nil && !v.now().Before(c.ExpiresAt.Time)
}

// ParseLifetime accepts Go durations ("24h", "90m"), whole days ("7d"), and
// bare seconds ("3600").  Anything else yields DefaultLifetime.
func ParseLifetime(s string) time.Duration {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n > 0 {
			return time.Duration(n) * 24 * time.Hour
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return DefaultLifetime
}
