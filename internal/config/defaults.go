// internal/config/defaults.go
//
// Compiled defaults, the lowest configuration layer.
//
// Context
// -------
// Every key consumed by the loader has an entry here, so an empty
// environment still yields a complete snapshot.  Millisecond variables are
// stored as time.Duration; koanf hands them to the typed struct unchanged.
//
// Notes
// -----
// • The JWT default must not reach production; cmd/web logs a warning when
//   it survives into a production snapshot.
// • Oxford commas, two spaces after periods.
package config

import (
	"errors"
	"time"
)

var errNoResolver = errors.New("no secret resolver configured")

// defaults is the lowest layer.  Keys match the koanf tags in model.go.
func defaults() map[string]any {
	return map[string]any{
		"mode":  ModeDevelopment,
		"port":  8080,
		"stage": "dev",

		"rate_limit.max":    100,
		"rate_limit.window": 15 * time.Minute,

		"auth.secret":     InsecureJWTSecret,
		"auth.expires_in": "24h",

		"formio.base_url": "",
		"formio.api_key":  "",

		"pubsub.topic_prefix": "formio",

		"database.host":                  "localhost",
		"database.port":                  5432,
		"database.name":                  "formio",
		"database.user":                  "formio_user",
		"database.password":              "",
		"database.ssl":                   false,
		"database.pool_max":              20,
		"database.pool_min":              2,
		"database.acquire_timeout":       60000 * time.Millisecond,
		"database.create_timeout":        3000 * time.Millisecond,
		"database.destroy_timeout":       5000 * time.Millisecond,
		"database.idle_timeout":          300000 * time.Millisecond,
		"database.reap_interval":         1000 * time.Millisecond,
		"database.create_retry_interval": 200 * time.Millisecond,

		"secrets.connection_string": "",
		"secrets.jwt_secret":        "",
		"secrets.formio_api_key":    "",

		"secret_store.backend": "gcp",
		"secret_store.timeout": 10 * time.Second,

		"logging.level":          "info",
		"logging.format":         "json",
		"logging.dir":            "",
		"logging.google_cloud":   false,
		"logging.geoip_database": "",

		"cache.ttl":       300 * time.Second,
		"cache.max_items": 1000,

		"features.analytics":     true,
		"features.caching":       true,
		"features.audit_logging": true,
		"features.pubsub":        true,

		"lifecycle.shutdown_timeout": 10 * time.Second,
	}
}
