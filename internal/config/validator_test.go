// internal/config/validator_test.go
//
// Unit-tests for Validate, topic derivation, and the DSN helper.
//
// Run: go test ./internal/config -v

package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ProductionReportsEveryProblem(t *testing.T) {
	clearEnv(t)
	cfg := Load(nil)
	cfg.Mode = ModeProduction
	cfg.Database.Host = ""
	cfg.Database.User = ""

	err := Validate(cfg)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{
		"GOOGLE_CLOUD_PROJECT",
		"DB_HOST",
		"DB_USER",
		"DB_PASSWORD or CONNECTION_STRING_SECRET_ID",
	}, ve.Problems)
	assert.Contains(t, err.Error(), "DB_HOST, DB_USER")
}

func TestValidate_DevelopmentSkipsProjectRule(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "dev")
	t.Setenv("CONNECTION_STRING_SECRET_ID", "")

	cfg := Load(nil)
	cfg.Database.Password = ""

	err := Validate(cfg)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"DB_PASSWORD or CONNECTION_STRING_SECRET_ID"}, ve.Problems)

	cfg.Secrets.ConnectionString = "db-conn"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_DevelopmentPassesWithHostAndUser(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PASSWORD", "pw")

	assert.NoError(t, Validate(Load(nil)))
}

func TestValidate_ProductionRequiresJWTSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "production")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "acme")
	t.Setenv("DB_PASSWORD", "pw")

	cfg := Load(nil)
	require.NoError(t, Validate(cfg))
	assert.True(t, cfg.UsesFallbackSecret())

	cfg.Auth.Secret = ""
	var ve *ValidationError
	require.True(t, errors.As(Validate(cfg), &ve))
	assert.Equal(t, []string{"JWT_SECRET"}, ve.Problems)
}

func TestValidate_RangeRules(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_POOL_MAX", "2")
	t.Setenv("DB_POOL_MIN", "5")
	t.Setenv("SECRET_STORE", "azure")

	var ve *ValidationError
	require.True(t, errors.As(Validate(Load(nil)), &ve))
	assert.Equal(t, []string{
		"Config.Database.PoolMin (ltefield=PoolMax)",
		"Config.SecretStore.Backend (oneof=gcp vault)",
	}, ve.Problems)
}

func TestTopics(t *testing.T) {
	prod := deriveTopics("formio", "prod")
	staging := deriveTopics("formio", "staging")

	assert.Equal(t, "formio-form-events-prod", prod["formEvents"])
	assert.Equal(t, "formio-form-events-staging", staging["formEvents"])
	assert.Equal(t, "formio-webhook-events-staging", staging["webhookEvents"])
	assert.Len(t, prod, 4)
}

func TestConfig_TopicsReturnsCopy(t *testing.T) {
	clearEnv(t)
	cfg := Load(nil)

	got := cfg.Topics()
	got["formEvents"] = "hijacked"

	assert.Equal(t, "formio-form-events-dev", cfg.Topic("formEvents"))
}

func TestDatabaseURL(t *testing.T) {
	d := Database{Host: "h", Port: 5432, Name: "d", User: "u", Password: "p", SSL: true}
	assert.Equal(t, "postgresql://u:p@h:5432/d?sslmode=require", d.URL())

	d.SSL = false
	assert.Equal(t, "postgresql://u:p@h:5432/d?sslmode=disable", d.URL())
}
