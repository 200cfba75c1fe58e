package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/middlewares"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func corsRequest(t *testing.T, mw func(http.Handler) http.Handler, method, origin string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, "/posts", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("default configuration allows all origins", func(t *testing.T) {
		t.Parallel()
		rec := corsRequest(t, middlewares.CORS(), http.MethodGet, "http://example.com", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no CORS headers when Origin header is missing", func(t *testing.T) {
		t.Parallel()
		rec := corsRequest(t, middlewares.CORS(), http.MethodGet, "", nil)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("specific origins list", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(middlewares.WithAllowOrigins("https://desk.example.com"))

		rec := corsRequest(t, mw, http.MethodGet, "https://desk.example.com", nil)
		assert.Equal(t, "https://desk.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Values("Vary"), "Origin")

		rec = corsRequest(t, mw, http.MethodGet, "https://evil.example.com", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard subdomains", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(middlewares.WithAllowOrigins("https://*.example.com", "http://localhost:5173"))
		for origin, want := range map[string]bool{
			"https://desk.example.com":      true,
			"https://a.b.example.com":       true,
			"http://localhost:5173":         true,
			"https://example.com":           false,
			"http://desk.example.com":       false,
			"https://desk.example.com.evil": false,
		} {
			got := corsRequest(t, mw, http.MethodGet, origin, nil).Header().Get("Access-Control-Allow-Origin")
			if want {
				assert.Equal(t, origin, got, origin)
			} else {
				assert.Empty(t, got, origin)
			}
		}
	})

	t.Run("origin func overrides list", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(
			middlewares.WithAllowOrigins("https://a.example.com"),
			middlewares.WithAllowOriginFunc(func(origin string) bool { return origin == "https://b.example.com" }),
		)
		assert.Empty(t, corsRequest(t, mw, http.MethodGet, "https://a.example.com", nil).Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "https://b.example.com",
			corsRequest(t, mw, http.MethodGet, "https://b.example.com", nil).Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("credentials echo the origin", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(middlewares.WithAllowCredentials(), middlewares.WithExposeHeaders("X-Request-ID"))
		rec := corsRequest(t, mw, http.MethodGet, "https://desk.example.com", nil)
		assert.Equal(t, "https://desk.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "X-Request-ID", rec.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("preflight is answered without the handler", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(
			middlewares.WithAllowMethods(http.MethodGet, http.MethodPost),
			middlewares.WithAllowHeaders("Content-Type", "Authorization"),
			middlewares.WithMaxAge(time.Hour),
		)
		rec := corsRequest(t, mw, http.MethodOptions, "https://desk.example.com",
			map[string]string{"Access-Control-Request-Method": http.MethodPost})

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("plain OPTIONS passes through", func(t *testing.T) {
		t.Parallel()
		rec := corsRequest(t, middlewares.CORS(), http.MethodOptions, "https://desk.example.com", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	})
}
