package requestinfo

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avct/uasurfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/formapi/internal/auth"
)

const chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.6367.60 Safari/537.36"

type fakeLocator struct{ country string }

func (f fakeLocator) Locate(ip net.IP) Geo { return Geo{IP: ip, CountryISO: f.country} }

func TestParseUA(t *testing.T) {
	ua := parseUA(chromeMac, "en-US,en;q=0.9")

	assert.Equal(t, "Chrome", ua.Browser)
	assert.Equal(t, "macOS", ua.OS)
	assert.Equal(t, "Mac", ua.Platform)
	assert.Equal(t, "Desktop", ua.Device)
	assert.Equal(t, "en-us", ua.PrimaryLang)
	assert.False(t, ua.IsBot)
}

func TestParseUA_Bot(t *testing.T) {
	ua := parseUA("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", "")

	assert.True(t, ua.IsBot)
	assert.Empty(t, ua.PrimaryLang)
}

func TestTrimVersion(t *testing.T) {
	tests := []struct {
		in   uasurfer.Version
		want string
	}{
		{uasurfer.Version{Major: 124, Minor: 0, Patch: 6367}, "124.0.6367"},
		{uasurfer.Version{Major: 14, Minor: 5}, "14.5"},
		{uasurfer.Version{Major: 11}, "11"},
		{uasurfer.Version{}, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trimVersion(tt.in))
	}
}

func TestPrimaryLang(t *testing.T) {
	assert.Equal(t, "es", primaryLang("es;q=0.8, en"))
	assert.Equal(t, "fr-ca", primaryLang(" fr-CA "))
	assert.Equal(t, "", primaryLang(""))
}

func TestDeviceTypeToString(t *testing.T) {
	assert.Equal(t, "Phone", deviceTypeToString(uasurfer.DevicePhone))
	assert.Equal(t, "Tablet", deviceTypeToString(uasurfer.DeviceTablet))
	assert.Equal(t, "Unknown", deviceTypeToString(uasurfer.DeviceUnknown))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	r.RemoteAddr = "198.51.100.7:4431"
	assert.Equal(t, "198.51.100.7", clientIP(r).String())

	r.RemoteAddr = "2001:db8::1"
	assert.Equal(t, "2001:db8::1", clientIP(r).String())

	r.RemoteAddr = "garbage"
	assert.Nil(t, clientIP(r))
}

func TestEnrich(t *testing.T) {
	tests := []struct {
		name        string
		loc         Locator
		wantCountry string
	}{
		{"Should carry only the IP without a locator", nil, ""},
		{"Should add the country from the locator", fakeLocator{country: "CA"}, "CA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *Info
			h := Enrich(tt.loc)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/forms", nil)
			req.RemoteAddr = "203.0.113.9:1234"
			req.Header.Set("User-Agent", chromeMac)
			h.ServeHTTP(httptest.NewRecorder(), req)

			require.NotNil(t, got)
			assert.Equal(t, "203.0.113.9", got.Geo.IP.String())
			assert.Equal(t, tt.wantCountry, got.Geo.CountryISO)
			assert.Equal(t, "Chrome", got.UA.Browser)
			assert.False(t, got.Timestamp.IsZero())
		})
	}
}

func TestFromContext_Missing(t *testing.T) {
	assert.Nil(t, FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestAudit(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	defer zap.ReplaceGlobals(zap.L())
	zap.ReplaceGlobals(zap.New(core))

	h := Enrich(fakeLocator{country: "DE"})(Audit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	req.Header.Set("User-Agent", chromeMac)
	claims := &auth.Claims{Role: "admin"}
	claims.Subject = "user-42"
	req = req.WithContext(auth.WithClaims(req.Context(), claims))

	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "user-42", fields["subject"])
	assert.Equal(t, "admin", fields["role"])
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
	assert.Equal(t, "/api/v1/forms", fields["path"])
	assert.Equal(t, "DE", fields["country"])
	assert.Equal(t, "Chrome", fields["browser"])
}

func TestAudit_DefaultsStatusOK(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	defer zap.ReplaceGlobals(zap.L())
	zap.ReplaceGlobals(zap.New(core))

	h := Audit(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/docs", nil))

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotContains(t, fields, "subject")
}
