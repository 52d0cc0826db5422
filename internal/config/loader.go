// internal/config/loader.go
//
// Configuration builder.
//
/*
Context
--------
`Build()` assembles one immutable `Config` from four layers (highest
precedence last):

  1. Compiled defaults (see defaults.go).
  2. Optional YAML file named by CONFIG_FILE.
  3. Process environment.  Each known variable is parsed leniently: an
     empty, unparseable, or non-positive numeric value is skipped, so the
     layer below (usually the default) wins.
  4. Secret-store overlay (overlay.go).

Build never fails.  Every problem in layers 2–4 is logged as a warning and
the builder keeps going with what it has.  Deciding whether the result is
good enough to serve traffic is the job of Validate().

Instrumentation
---------------
  • DEBUG spans: layer loads.
  • WARN  spans: unreadable file, unmarshal failure, secret degradation.
  • INFO  span:  final "config built" with key highlights (never secrets).

Notes
-----
  • No package-level snapshot.  Callers own the returned pointer and pass it
    on explicitly.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/formapi/internal/secrets"
)

/*──────────────────────────── environment table ────────────────────────────*/

type envField struct {
	key   string
	parse func(raw string) (any, bool)
}

// envFields maps every consumed variable to its koanf path and parser.
var envFields = map[string]envField{
	"NODE_ENV":             {"mode", text},
	"PORT":                 {"port", positiveInt},
	"GOOGLE_CLOUD_PROJECT": {"project_id", text},
	"GCP_PROJECT_ID":       {"project_id", legacyProject},
	"ENVIRONMENT":          {"stage", text},

	"CORS_ORIGINS":      {"cors.origins", list},
	"RATE_LIMIT_MAX":    {"rate_limit.max", positiveInt},
	"RATE_LIMIT_WINDOW": {"rate_limit.window", duration},

	"JWT_SECRET":     {"auth.secret", text},
	"JWT_EXPIRES_IN": {"auth.expires_in", text},

	"FORMIO_BASE_URL": {"formio.base_url", text},
	"FORMIO_API_KEY":  {"formio.api_key", text},

	"PUBSUB_TOPIC_PREFIX": {"pubsub.topic_prefix", text},

	"DB_HOST":                  {"database.host", text},
	"DB_PORT":                  {"database.port", positiveInt},
	"DB_NAME":                  {"database.name", text},
	"DB_USER":                  {"database.user", text},
	"DB_PASSWORD":              {"database.password", text},
	"DB_SSL":                   {"database.ssl", isTrue},
	"DB_POOL_MAX":              {"database.pool_max", positiveInt},
	"DB_POOL_MIN":              {"database.pool_min", positiveInt},
	"DB_ACQUIRE_TIMEOUT":       {"database.acquire_timeout", millis},
	"DB_CREATE_TIMEOUT":        {"database.create_timeout", millis},
	"DB_DESTROY_TIMEOUT":       {"database.destroy_timeout", millis},
	"DB_IDLE_TIMEOUT":          {"database.idle_timeout", millis},
	"DB_REAP_INTERVAL":         {"database.reap_interval", millis},
	"DB_CREATE_RETRY_INTERVAL": {"database.create_retry_interval", millis},

	"CONNECTION_STRING_SECRET_ID": {"secrets.connection_string", text},
	"JWT_SECRET_SECRET_ID":        {"secrets.jwt_secret", text},
	"FORMIO_API_KEY_SECRET_ID":    {"secrets.formio_api_key", text},
	"SECRET_STORE":                {"secret_store.backend", text},
	"SECRET_TIMEOUT":              {"secret_store.timeout", duration},

	"LOG_LEVEL":                   {"logging.level", text},
	"LOG_FORMAT":                  {"logging.format", text},
	"LOG_DIR":                     {"logging.dir", text},
	"ENABLE_GOOGLE_CLOUD_LOGGING": {"logging.google_cloud", isTrue},
	"GEOIP_DATABASE":              {"logging.geoip_database", text},

	"CACHE_TTL":       {"cache.ttl", seconds},
	"CACHE_MAX_ITEMS": {"cache.max_items", positiveInt},

	"ANALYTICS_ENABLED":     {"features.analytics", notFalse},
	"CACHING_ENABLED":       {"features.caching", notFalse},
	"AUDIT_LOGGING_ENABLED": {"features.audit_logging", notFalse},
	"PUBSUB_ENABLED":        {"features.pubsub", notFalse},

	"SHUTDOWN_TIMEOUT": {"lifecycle.shutdown_timeout", duration},
}

// envValue is the koanf env callback.  Returning an empty key drops the
// variable from the layer.
func envValue(name, raw string) (string, any) {
	f, ok := envFields[name]
	if !ok {
		return "", nil
	}
	v, ok := f.parse(raw)
	if !ok {
		return "", nil
	}
	return f.key, v
}

/*──────────────────────────── lenient parsers ──────────────────────────────*/

func text(raw string) (any, bool) { return raw, raw != "" }

func positiveInt(raw string) (any, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return nil, false
	}
	return n, true
}

func millis(raw string) (any, bool) {
	n, ok := positiveInt(raw)
	if !ok {
		return nil, false
	}
	return time.Duration(n.(int)) * time.Millisecond, true
}

func seconds(raw string) (any, bool) {
	n, ok := positiveInt(raw)
	if !ok {
		return nil, false
	}
	return time.Duration(n.(int)) * time.Second, true
}

func duration(raw string) (any, bool) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return nil, false
	}
	return d, true
}

func list(raw string) (any, bool) {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out, len(out) > 0
}

// isTrue enables a flag only for the literal "true".
func isTrue(raw string) (any, bool) { return raw == "true", true }

// notFalse disables a flag only for the literal "false".
func notFalse(raw string) (any, bool) { return raw != "false", true }

// legacyProject lets GCP_PROJECT_ID fill project_id only when
// GOOGLE_CLOUD_PROJECT is unset.
func legacyProject(raw string) (any, bool) {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		return nil, false
	}
	return text(raw)
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load builds the environment-only snapshot (layers 1–3).  It never fails.
func Load(log *zap.SugaredLogger) *Config {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	cfg, err := unmarshal(true, log)
	if err != nil {
		log.Warnw("config unmarshal failed, ignoring CONFIG_FILE", "err", err)
		if cfg, err = unmarshal(false, log); err != nil {
			// Validation reports every missing field of the zero value.
			log.Errorw("config unmarshal failed", "err", err)
			cfg = &Config{}
		}
	}

	cfg.topics = deriveTopics(cfg.PubSub.TopicPrefix, cfg.Stage)
	return cfg
}

func unmarshal(withFile bool, log *zap.SugaredLogger) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, err
	}

	if path := os.Getenv("CONFIG_FILE"); withFile && path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			log.Warnw("config yaml load failed", "file", path, "err", err)
		} else {
			log.Debugw("config yaml loaded", "file", path)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		log.Warnw("config env overlay failed", "err", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolverFactory builds the secret resolver once the environment-only
// snapshot is known (the store needs the project id and backend name).
type ResolverFactory func(ctx context.Context, base *Config) (secrets.Resolver, error)

// Build runs Load and then the secret overlay.  It never fails: a store
// that cannot be constructed degrades every lookup to FetchFailed.
func Build(ctx context.Context, log *zap.SugaredLogger, newResolver ResolverFactory) *Config {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	base := Load(log)

	var r secrets.Resolver = secrets.Unavailable(errNoResolver)
	if base.Secrets != (Secrets{}) && newResolver != nil {
		var err error
		if r, err = newResolver(ctx, base); err != nil {
			log.Warnw("secret store unavailable, keeping environment values", "err", err)
			r = secrets.Unavailable(err)
		}
	}

	cfg := Overlay(ctx, base, r, log)

	log.Infow("config built",
		"mode", cfg.Mode,
		"stage", cfg.Stage,
		"port", cfg.Port,
		"database", cfg.Database.Address(),
		"secret_store", cfg.SecretStore.Backend,
		"cors_wildcard", cfg.CORS.AllowAll(),
	)
	return cfg
}
