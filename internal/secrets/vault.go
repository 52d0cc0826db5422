// internal/secrets/vault.go
//
// HashiCorp Vault store (KV v2).
//
// Context
// -------
// Alternative backend for deployments that keep credentials in Vault
// instead of Google Secret Manager.  A secret identifier is a KV-v2 path
// whose first segment is the mount, e.g. `secret/formapi/jwt`.  The value
// is read from a single field of that secret (default `value`).
//
// Environment expectations
// ------------------------
//   - VAULT_ADDR   – scheme and host of the Vault server.
//   - VAULT_TOKEN  – token used for every read.
//
// Notes
// -----
//   - No client-side retries.  The resolver makes exactly one store call per
//     lookup, and the Vault SDK would otherwise retry 5xx answers twice.
//   - No background token renewal.  Secrets are fetched once at startup and
//     the client is discarded afterwards.
//   - Oxford commas, two spaces after periods.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// DefaultVaultField is the KV field read when none is configured.
const DefaultVaultField = "value"

// VaultStore reads one field from KV-v2 secrets.
type VaultStore struct {
	api   *vault.Client
	field string
}

// NewVaultStore constructs a client from cfg.  A nil cfg means
// vault.DefaultConfig() plus the standard VAULT_* environment.  Client
// retries are always disabled, including on a caller-supplied cfg and
// regardless of VAULT_MAX_RETRIES: one Access is one HTTP request.
func NewVaultStore(cfg *vault.Config, field string) (*VaultStore, error) {
	if cfg == nil {
		cfg = vault.DefaultConfig()
		if err := cfg.ReadEnvironment(); err != nil {
			return nil, fmt.Errorf("vault env cfg: %w", err)
		}
	}
	cfg.MaxRetries = 0
	if field == "" {
		field = DefaultVaultField
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	return &VaultStore{api: apiCli, field: field}, nil
}

// SetToken overrides the token picked up from the environment.
func (s *VaultStore) SetToken(tok string) { s.api.SetToken(tok) }

// Access reads the configured field of the latest version at id.
func (s *VaultStore) Access(ctx context.Context, id string) (string, error) {
	mount, rel := splitMount(id)
	if mount == "" || rel == "" {
		return "", fmt.Errorf("vault path %q must be <mount>/<path>", id)
	}

	sec, err := s.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		if errors.Is(err, vault.ErrSecretNotFound) {
			return "", fmt.Errorf("vault %s: %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("vault get %s: %w", id, err)
	}

	raw, ok := sec.Data[s.field]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q: %w", s.field, id, ErrNotFound)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", id, s.field)
	}
	return sval, nil
}

func splitMount(p string) (mount, rel string) {
	parts := strings.SplitN(strings.Trim(p, "/"), "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}
