// internal/middleware/cors.go
//
// Cross-origin policy built on go-chi/cors.
//
// Context
// -------
// An empty CORS_ORIGINS, or one containing "*", selects the wildcard
// policy.  Otherwise only the listed origins are echoed back.  Credentials
// are allowed in both cases, and preflight answers are cached for five
// minutes.
package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/yanizio/formapi/internal/config"
)

// CORS builds the cross-origin policy from CORS_ORIGINS.  The wildcard
// policy reflects any origin so credentialed requests still work.
func CORS(c config.CORS) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "x-jwt-token"},
		ExposedHeaders:   []string{"X-Request-ID", "x-jwt-token"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if c.AllowAll() {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	} else {
		opts.AllowedOrigins = c.Origins
	}
	return cors.Handler(opts)
}
