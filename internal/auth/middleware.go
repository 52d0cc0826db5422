// internal/auth/middleware.go
//
// Bearer-token gate for /api/v1.
//
// Context
// -------
// Requests without an "Authorization: Bearer <token>" header, or with a
// token the Verifier rejects, get a 401 JSON body and never reach the
// handler.  Accepted requests carry the verified claims in their context
// (see context.go).
//
// Notes
// -----
// • The scheme is matched case-insensitively.
// • Rejection causes are logged at debug; clients only see the category.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/formapi/internal/respond"
)

// Middleware rejects requests without a valid bearer token and attaches the
// verified claims to the request context.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := extractBearerToken(r)
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				zap.S().Debugw("bearer token rejected", "path", r.URL.Path, "err", err)
				msg := "invalid token"
				if errors.Is(err, ErrExpiredToken) {
					msg = ErrExpiredToken.Error()
				}
				respond.Error(w, http.StatusUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// extractBearerToken returns the token after a case-insensitive "Bearer "
// scheme.
func extractBearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
