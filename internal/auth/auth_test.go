package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/formapi/internal/cache"
	"github.com/yanizio/formapi/internal/config"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

func newTestVerifier(t *testing.T, tokens *cache.LRU[string, *Claims]) *Verifier {
	t.Helper()
	v, err := NewVerifier(config.Auth{Secret: testSecret, ExpiresIn: "1h"}, tokens)
	require.NoError(t, err)
	return v
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := NewVerifier(config.Auth{}, nil)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestParseLifetime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"24h", 24 * time.Hour},
		{"90m", 90 * time.Minute},
		{"7d", 7 * 24 * time.Hour},
		{"3600", time.Hour},
		{"", DefaultLifetime},
		{"forever", DefaultLifetime},
		{"-5s", DefaultLifetime},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLifetime(tt.in))
		})
	}
}

func TestVerifier_RoundTrip(t *testing.T) {
	v := newTestVerifier(t, nil)

	raw, err := v.Issue("user-123", "admin")
	require.NoError(t, err)

	claims, err := v.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifier_Rejections(t *testing.T) {
	v := newTestVerifier(t, nil)

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		other, err := NewVerifier(config.Auth{Secret: "some-other-secret"}, nil)
		require.NoError(t, err)
		raw, err := other.Issue("mallory", "")
		require.NoError(t, err)

		_, err = v.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject the none algorithm", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = v.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should report expiry distinctly", func(t *testing.T) {
		v.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		raw, err := v.Issue("late", "")
		require.NoError(t, err)
		v.now = time.Now

		_, err = v.Verify(raw)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Should reject garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerifier_CacheHonoursExpiry(t *testing.T) {
	tokens := cache.New[string, *Claims](8, time.Hour)
	v := newTestVerifier(t, tokens)

	raw, err := v.Issue("cached", "")
	require.NoError(t, err)

	_, err = v.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, tokens.Len())

	v.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = v.Verify(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantToken  string
		wantOK     bool
	}{
		{"Should reject an empty header", "", "", false},
		{"Should accept Bearer", "Bearer abc123", "abc123", true},
		{"Should accept lowercase bearer", "bearer abc123", "abc123", true},
		{"Should reject a missing token", "Bearer", "", false},
		{"Should reject a blank token", "Bearer   ", "", false},
		{"Should reject other schemes", "Basic abc123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			token, ok := extractBearerToken(req)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestMiddleware(t *testing.T) {
	v := newTestVerifier(t, nil)
	raw, err := v.Issue("user-123", "")
	require.NoError(t, err)

	var seen *Claims
	h := Middleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("Should return 401 without a token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/forms", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"missing bearer token"}`, rr.Body.String())
	})

	t.Run("Should return 401 for an invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/forms", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Should pass claims downstream", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/forms", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "user-123", seen.Subject)
	})
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFrom(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), nil)
	_, ok = ClaimsFrom(ctx)
	assert.False(t, ok)

	c := &Claims{Role: "editor"}
	got, ok := ClaimsFrom(WithClaims(context.Background(), c))
	assert.True(t, ok)
	assert.Same(t, c, got)
}
