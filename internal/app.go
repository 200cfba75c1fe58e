package internal

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmitrymomot/newsdesk/pkg/health"
	"github.com/dmitrymomot/newsdesk/pkg/job"
	"github.com/dmitrymomot/newsdesk/pkg/logger"
)

const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Middleware wraps the whole application handler.
type Middleware = func(http.Handler) http.Handler

// App owns the route tree and serves it.
type App struct {
	tree           *Tree
	engine         *engine
	handler        http.Handler
	healthConfig   *healthConfig
	logger         *slog.Logger
	sessionManager *SessionManager
	jobs           *job.Manager
	middlewares    []Middleware
	routes         []func(*Node)
	serviceName    string
}

// New applies opts, registers routes and freezes the tree. A tree that
// fails to freeze is a programming error, so New panics with it.
func New(opts ...Option) *App {
	a := &App{
		tree:        NewTree(),
		logger:      logger.NewNope(),
		serviceName: "newsdesk",
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.sessionManager != nil {
		a.sessionManager.SetLogger(a.logger)
	}

	root := a.tree.Root()
	for _, fn := range a.routes {
		fn(root)
	}
	if err := a.tree.Freeze(); err != nil {
		panic(err)
	}

	a.engine = newEngine(a.logger, a.sessionManager)

	var h http.Handler = http.HandlerFunc(a.dispatch)
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	a.handler = otelhttp.NewHandler(h, a.serviceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return a.SpanName(r)
		}),
	)

	a.logger.Debug("routes registered", slog.Int("count", len(a.tree.Routes())))
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) dispatch(w http.ResponseWriter, r *http.Request) {
	if a.healthConfig != nil && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
		switch r.URL.Path {
		case a.healthConfig.livenessPath:
			health.LivenessHandler()(w, r)
			return
		case a.healthConfig.readinessPath:
			health.ReadinessHandler(a.healthConfig.checks, health.WithLogger(a.logger))(w, r)
			return
		}
	}

	route, params, ok := a.tree.Lookup(r.Method, r.URL.Path)
	if !ok {
		writeError(w, ErrNotFound(""))
		return
	}
	a.engine.serve(w, r, route, params)
}

// SpanName names the server span of r by its route pattern, so every post
// slug shares one span name. Unmatched requests get the bare method.
func (a *App) SpanName(r *http.Request) string {
	route, _, ok := a.tree.Lookup(r.Method, r.URL.Path)
	if !ok {
		return r.Method
	}
	return r.Method + " " + route.Path
}

// Tree returns the frozen route tree.
func (a *App) Tree() *Tree {
	return a.tree
}

// Logger returns the App logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Jobs returns the job manager configured with WithJobs, or nil.
func (a *App) Jobs() *job.Manager {
	return a.jobs
}

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures the health endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath overrides the liveness path.
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath overrides the readiness path.
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named check to the readiness endpoint.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if name != "" && fn != nil {
			c.checks[name] = fn
		}
	}
}
