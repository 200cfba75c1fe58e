package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// CORSOption configures CORS.
type CORSOption func(*corsConfig)

type corsConfig struct {
	origins     []string
	originFunc  func(origin string) bool
	methods     []string
	headers     []string
	expose      []string
	credentials bool
	maxAge      time.Duration
}

// WithAllowOrigins lists the allowed origins. "*" allows any origin and a
// leading wildcard label, as in "https://*.example.com", allows subdomains.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(c *corsConfig) { c.origins = origins }
}

// WithAllowOriginFunc decides per origin and replaces the origin list.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(c *corsConfig) { c.originFunc = fn }
}

// WithAllowMethods sets the methods announced in preflight answers.
func WithAllowMethods(methods ...string) CORSOption {
	return func(c *corsConfig) { c.methods = methods }
}

// WithAllowHeaders sets the request headers announced in preflight answers.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(c *corsConfig) { c.headers = headers }
}

// WithExposeHeaders lists response headers scripts may read.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(c *corsConfig) { c.expose = headers }
}

// WithAllowCredentials lets browsers send the session cookie. The request
// origin is echoed instead of "*".
func WithAllowCredentials() CORSOption {
	return func(c *corsConfig) { c.credentials = true }
}

// WithMaxAge sets how long browsers may cache a preflight answer.
func WithMaxAge(d time.Duration) CORSOption {
	return func(c *corsConfig) { c.maxAge = d }
}

// CORS answers preflight requests from allowed origins with 204, so they
// never reach the route tree, and decorates other requests from allowed
// origins. Requests from other origins pass through untouched.
func CORS(opts ...CORSOption) func(http.Handler) http.Handler {
	cfg := &corsConfig{
		origins: []string{"*"},
		methods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		headers: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:  12 * time.Hour,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	allowed := cfg.matcher()
	anyOrigin := cfg.originFunc == nil && slices.Contains(cfg.origins, "*")
	methods := strings.Join(cfg.methods, ", ")
	headers := strings.Join(cfg.headers, ", ")
	expose := strings.Join(cfg.expose, ", ")
	maxAge := strconv.Itoa(int(cfg.maxAge.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !allowed(origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			switch {
			case cfg.credentials:
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			case anyOrigin:
				h.Set("Access-Control-Allow-Origin", "*")
			default:
				h.Set("Access-Control-Allow-Origin", origin)
			}
			if expose != "" {
				h.Set("Access-Control-Expose-Headers", expose)
			}

			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				next.ServeHTTP(w, r)
				return
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.maxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func (c *corsConfig) matcher() func(string) bool {
	if c.originFunc != nil {
		return c.originFunc
	}
	if slices.Contains(c.origins, "*") {
		return func(string) bool { return true }
	}

	exact := make(map[string]struct{}, len(c.origins))
	var suffixes [][2]string // scheme://, .domain
	for _, o := range c.origins {
		scheme, host, ok := strings.Cut(o, "://*.")
		if !ok {
			exact[o] = struct{}{}
			continue
		}
		suffixes = append(suffixes, [2]string{scheme + "://", "." + host})
	}

	return func(origin string) bool {
		if _, ok := exact[origin]; ok {
			return true
		}
		for _, s := range suffixes {
			rest, ok := strings.CutPrefix(origin, s[0])
			if ok && strings.HasSuffix(rest, s[1]) && len(rest) > len(s[1]) {
				return true
			}
		}
		return false
	}
}
