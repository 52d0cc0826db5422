// internal/secrets/store_test.go
//
// Backend tests against httptest fakes of the Secret Manager REST API and
// the Vault KV-v2 HTTP API.

package secrets

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestVersionName(t *testing.T) {
	assert.Equal(t,
		"projects/acme-prod/secrets/db-conn/versions/latest",
		VersionName("acme-prod", "db-conn"))
}

func TestNewGCPStore_RequiresProject(t *testing.T) {
	_, err := NewGCPStore(context.Background(), "")
	require.Error(t, err)
}

func newFakeSecretManager(t *testing.T, secrets map[string]string) *GCPStore {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		for id, val := range secrets {
			if strings.Contains(r.URL.Path, VersionName("acme", id)) {
				fmt.Fprintf(w, `{"name":%q,"payload":{"data":%q}}`,
					VersionName("acme", id), base64.StdEncoding.EncodeToString([]byte(val)))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Secret not found","status":"NOT_FOUND"}}`))
	}))
	t.Cleanup(srv.Close)

	store, err := NewGCPStore(context.Background(), "acme",
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return store
}

func TestGCPStore_Access(t *testing.T) {
	store := newFakeSecretManager(t, map[string]string{"jwt": "signing-key"})

	got, err := store.Access(context.Background(), "jwt")
	require.NoError(t, err)
	assert.Equal(t, "signing-key", got)

	_, err = store.Access(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVaultStore_Access(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/formapi/jwt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"value":"vault-key"},` +
			`"metadata":{"created_time":"2024-01-01T00:00:00Z","deletion_time":"","destroyed":false,"version":3}}}`))
	}))
	defer srv.Close()

	cfg := vault.DefaultConfig()
	cfg.Address = srv.URL
	store, err := NewVaultStore(cfg, "")
	require.NoError(t, err)
	store.SetToken("test-token")

	got, err := store.Access(context.Background(), "secret/formapi/jwt")
	require.NoError(t, err)
	assert.Equal(t, "vault-key", got)

	_, err = store.Access(context.Background(), "secret/formapi/other")
	require.Error(t, err)

	_, err = store.Access(context.Background(), "no-mount")
	require.Error(t, err)
}

func TestVaultStore_OneRequestPerLookup(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	t.Setenv("VAULT_ADDR", srv.URL)
	t.Setenv("VAULT_MAX_RETRIES", "4")

	store, err := NewStore(context.Background(), BackendVault, "")
	require.NoError(t, err)

	res := NewResolver(store, 5*time.Second, nil).Resolve(context.Background(), "secret/formapi/jwt")

	assert.Equal(t, OutcomeFetchFailed, res.Outcome())
	assert.Equal(t, int32(1), calls.Load(), "a 503 must not be retried")
}

func TestNewVaultStore_DisablesRetriesOnSuppliedConfig(t *testing.T) {
	cfg := vault.DefaultConfig()
	cfg.MaxRetries = 3

	_, err := NewVaultStore(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxRetries)
}

func TestNewStore_UnknownBackend(t *testing.T) {
	_, err := NewStore(context.Background(), "aws", "acme")
	require.Error(t, err)
}
