// internal/secrets/resolver.go
//
// Store-agnostic secret resolver.
//
// Context
// -------
// A Store knows how to fetch the latest value of one named secret.  The
// Resolver wraps a Store and turns every possible failure into a tagged
// Result, so nothing past this boundary ever sees a raw error or panic.
//
// Public workflow
// ---------------
//  1. store, err := secrets.NewGCPStore(ctx, projectID)   // during boot.
//  2. r := secrets.NewResolver(store, 10*time.Second, log)
//  3. res := r.Resolve(ctx, "jwt-secret")                 // Found | NotConfigured | FetchFailed
//
// Notes
// -----
//   - One Store call per Resolve.  No retry and no cache.
//   - The per-call timeout bounds stores that have no deadline of their own.
//   - Secret values are never logged, only identifiers and causes.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/formapi/internal/metrics"
)

var (
	// ErrNotFound is returned by stores when the secret or version is absent.
	ErrNotFound = errors.New("secret not found")

	// ErrEmptyPayload is returned when the store answers with an empty value.
	ErrEmptyPayload = errors.New("secret payload is empty")
)

// Store fetches the latest version of a secret by identifier.
type Store interface {
	Access(ctx context.Context, id string) (string, error)
}

// StoreFunc adapts a plain function to the Store interface.
type StoreFunc func(ctx context.Context, id string) (string, error)

// Access calls f.
func (f StoreFunc) Access(ctx context.Context, id string) (string, error) { return f(ctx, id) }

// Resolver is the contract the configuration builder depends on.
type Resolver interface {
	Resolve(ctx context.Context, id string) Result
}

// StoreResolver implements Resolver on top of a Store.  Safe for concurrent
// use when the underlying Store is.
type StoreResolver struct {
	store   Store
	timeout time.Duration
	log     *zap.SugaredLogger
}

// NewResolver wraps store.  timeout <= 0 disables the per-call bound.  A nil
// logger is replaced with a no-op logger.
func NewResolver(store Store, timeout time.Duration, log *zap.SugaredLogger) *StoreResolver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &StoreResolver{store: store, timeout: timeout, log: log}
}

// Resolve fetches id once.  It never panics and never returns an error.
func (r *StoreResolver) Resolve(ctx context.Context, id string) (res Result) {
	if id == "" {
		return observe(NotConfigured())
	}

	defer func() {
		if p := recover(); p != nil {
			res = observe(FetchFailed(fmt.Errorf("secret %s: store panic: %v", id, p)))
			r.log.Warnw("secret fetch panicked", "secret_id", id, "panic", p)
		}
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	val, err := r.store.Access(ctx, id)
	metrics.SecretFetchSeconds.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		r.log.Warnw("secret fetch failed", "secret_id", id, "err", err)
		return observe(FetchFailed(fmt.Errorf("secret %s: %w", id, err)))
	case val == "":
		r.log.Warnw("secret fetch returned empty payload", "secret_id", id)
		return observe(FetchFailed(fmt.Errorf("secret %s: %w", id, ErrEmptyPayload)))
	}

	r.log.Debugw("secret fetched", "secret_id", id)
	return observe(Found(val))
}

// Unavailable returns a Resolver whose every configured lookup fails with
// cause.  Used when the store client itself could not be constructed.
func Unavailable(cause error) Resolver { return unavailable{cause: cause} }

type unavailable struct{ cause error }

func (u unavailable) Resolve(_ context.Context, id string) Result {
	if id == "" {
		return observe(NotConfigured())
	}
	return observe(FetchFailed(fmt.Errorf("secret %s: %w", id, u.cause)))
}

func observe(res Result) Result {
	metrics.SecretLookups.WithLabelValues(res.Outcome().String()).Inc()
	return res
}
