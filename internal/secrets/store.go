// internal/secrets/store.go
//
// Backend selection.
//
// Context
// -------
// SECRET_STORE picks the Store behind the resolver:
//
//   - gcp (default)  Google Secret Manager, scoped to the project id.
//   - vault          HashiCorp Vault KV v2, configured from VAULT_*.
//
// Any other name is a construction error, which Build degrades to
// FetchFailed for every configured secret.
package secrets

import (
	"context"
	"fmt"
)

// Backend names accepted by NewStore.
const (
	BackendGCP   = "gcp"
	BackendVault = "vault"
)

// NewStore picks a Store implementation by backend name.
func NewStore(ctx context.Context, backend, project string) (Store, error) {
	switch backend {
	case "", BackendGCP:
		return NewGCPStore(ctx, project)
	case BackendVault:
		return NewVaultStore(nil, DefaultVaultField)
	default:
		return nil, fmt.Errorf("unknown secret store backend %q", backend)
	}
}
