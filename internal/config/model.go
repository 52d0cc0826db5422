// internal/config/model.go
//
// Typed configuration snapshot for the form API.
//
// Context
// -------
// These structs define the shape of the tree that `loader.go` builds from
// its overlay layers:
//
//   - compiled defaults                         – lowest precedence,
//   - optional YAML file named by CONFIG_FILE,
//   - process environment (NODE_ENV, DB_HOST, …),
//   - secret-store overlay (`overlay.go`)       – highest precedence.
//
// A *Config is built once per process and handed to every component that
// needs it.  Nothing mutates it after validation; components that want
// different values need a new process.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"`; range rules use `validate:"…"`.
//   - Derived fields (pub/sub topics) live in unexported fields so no layer
//     can set them directly.
//   - Secrets are never included in String-style helpers.
package config

import (
	"maps"
	"net"
	"slices"
	"strconv"
	"time"
)

// Environment modes with special meaning.  Any other string is allowed and
// behaves like development for validation purposes.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// InsecureJWTSecret is the compiled fallback for Auth.Secret.
const InsecureJWTSecret = "fallback-secret-change-in-production"

//
// CORS section
//

// CORS is either the wildcard policy or an ordered list of origins.
type CORS struct {
	Origins []string `koanf:"origins"`
}

// AllowAll reports whether the wildcard policy is in effect.
func (c CORS) AllowAll() bool {
	return len(c.Origins) == 0 || slices.Contains(c.Origins, "*")
}

//
// Small scalar groups
//

// RateLimit holds the per-client request budget for one window.
type RateLimit struct {
	Max    int           `koanf:"max"    validate:"gt=0"`
	Window time.Duration `koanf:"window" validate:"gt=0"`
}

// Auth holds bearer-token verification settings.  Secret is never logged.
type Auth struct {
	Secret    string `koanf:"secret"`
	ExpiresIn string `koanf:"expires_in"`
}

// Formio holds the external form-service client settings.
type Formio struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

//
// Pub/Sub section
//

// PubSub holds the topic prefix.  Topic names are derived, see topics.go.
type PubSub struct {
	TopicPrefix string `koanf:"topic_prefix"`
}

//
// Database section
//

// Database holds the connection group plus pool tunables.
//
// Host, Port, Name, User, Password, and SSL form one connection group.  The
// secret overlay replaces that group as a unit (see Connection and
// WithConnection); pool sizing and timeouts are never touched by it.
type Database struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"     validate:"min=1,max=65535"`
	Name     string `koanf:"name"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	SSL      bool   `koanf:"ssl"`

	PoolMax             int           `koanf:"pool_max"              validate:"min=1"`
	PoolMin             int           `koanf:"pool_min"              validate:"min=0,ltefield=PoolMax"`
	AcquireTimeout      time.Duration `koanf:"acquire_timeout"       validate:"gt=0"`
	CreateTimeout       time.Duration `koanf:"create_timeout"        validate:"gt=0"`
	DestroyTimeout      time.Duration `koanf:"destroy_timeout"       validate:"gt=0"`
	IdleTimeout         time.Duration `koanf:"idle_timeout"          validate:"gt=0"`
	ReapInterval        time.Duration `koanf:"reap_interval"         validate:"gt=0"`
	CreateRetryInterval time.Duration `koanf:"create_retry_interval" validate:"gt=0"`
}

// Connection is the group of fields a connection-string secret replaces.
type Connection struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSL      bool
}

// Connection returns the current connection group.
func (d Database) Connection() Connection {
	return Connection{
		Host:     d.Host,
		Port:     d.Port,
		Name:     d.Name,
		User:     d.User,
		Password: d.Password,
		SSL:      d.SSL,
	}
}

// WithConnection returns a copy of d whose connection group is c.  Pool
// settings are carried over unchanged.
func (d Database) WithConnection(c Connection) Database {
	d.Host = c.Host
	d.Port = c.Port
	d.Name = c.Name
	d.User = c.User
	d.Password = c.Password
	d.SSL = c.SSL
	return d
}

// Address renders host:port/name for logs.  The password is never included.
func (d Database) Address() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port)) + "/" + d.Name
}

//
// Secret references
//

// Secrets maps logical secret names to secret-store identifiers.  An empty
// identifier means the field is not managed by the store.
type Secrets struct {
	ConnectionString string `koanf:"connection_string"`
	JWTSecret        string `koanf:"jwt_secret"`
	FormioAPIKey     string `koanf:"formio_api_key"`
}

// SecretStore selects and bounds the secret backend.
type SecretStore struct {
	Backend string        `koanf:"backend" validate:"oneof=gcp vault"`
	Timeout time.Duration `koanf:"timeout"`
}

//
// Pass-through groups
//

// Logging is consumed by internal/logger.
type Logging struct {
	Level       string `koanf:"level"`
	Format      string `koanf:"format"`
	Dir         string `koanf:"dir"`
	GoogleCloud bool   `koanf:"google_cloud"`
	// GeoIPDatabase is an optional GeoLite2-City file used to add a
	// country to audit entries.
	GeoIPDatabase string `koanf:"geoip_database"`
}

// Cache is consumed by the bearer-token cache.
type Cache struct {
	TTL      time.Duration `koanf:"ttl"       validate:"gt=0"`
	MaxItems int           `koanf:"max_items" validate:"gt=0"`
}

// Features holds independently defaulted on/off switches.
type Features struct {
	Analytics    bool `koanf:"analytics"`
	Caching      bool `koanf:"caching"`
	AuditLogging bool `koanf:"audit_logging"`
	PubSub       bool `koanf:"pubsub"`
}

// Flags returns the switches as a fresh name → enabled map.
func (f Features) Flags() map[string]bool {
	return map[string]bool{
		"analyticsEnabled":    f.Analytics,
		"cachingEnabled":      f.Caching,
		"auditLoggingEnabled": f.AuditLogging,
		"pubsubEnabled":       f.PubSub,
	}
}

// Lifecycle holds process-level timings.
type Lifecycle struct {
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

//
// Root aggregate
//

// Config is the immutable snapshot returned by Build.
type Config struct {
	Mode      string `koanf:"mode"`
	Port      int    `koanf:"port"  validate:"min=1,max=65535"`
	ProjectID string `koanf:"project_id"`
	Stage     string `koanf:"stage"`

	CORS        CORS        `koanf:"cors"`
	RateLimit   RateLimit   `koanf:"rate_limit"`
	Auth        Auth        `koanf:"auth"`
	Formio      Formio      `koanf:"formio"`
	PubSub      PubSub      `koanf:"pubsub"`
	Database    Database    `koanf:"database"`
	Secrets     Secrets     `koanf:"secrets"`
	SecretStore SecretStore `koanf:"secret_store"`
	Logging     Logging     `koanf:"logging"`
	Cache       Cache       `koanf:"cache"`
	Features    Features    `koanf:"features"`
	Lifecycle   Lifecycle   `koanf:"lifecycle"`

	topics map[string]string
}

// IsProduction reports whether production-only rules apply.
func (c *Config) IsProduction() bool { return c.Mode == ModeProduction }

// ListenAddr is the TCP address the HTTP server binds.
func (c *Config) ListenAddr() string { return ":" + strconv.Itoa(c.Port) }

// Topic returns the fully-qualified topic for a logical channel key
// (formEvents, formSubmissions, formUpdates, webhookEvents).
func (c *Config) Topic(channel string) string { return c.topics[channel] }

// Topics returns a copy of every derived topic.
func (c *Config) Topics() map[string]string { return maps.Clone(c.topics) }

// UsesFallbackSecret reports whether Auth.Secret is still the compiled
// fallback.
func (c *Config) UsesFallbackSecret() bool { return c.Auth.Secret == InsecureJWTSecret }
