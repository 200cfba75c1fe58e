package internal

import (
	"log/slog"

	"github.com/dmitrymomot/newsdesk/pkg/health"
	"github.com/dmitrymomot/newsdesk/pkg/job"
	"github.com/dmitrymomot/newsdesk/pkg/logger"
	"github.com/dmitrymomot/newsdesk/pkg/session"
)

// Option configures an App.
type Option func(*App)

// WithRoutes registers endpoints on the root node. It may be given more
// than once; registrations run in order.
func WithRoutes(fn func(root *Node)) Option {
	return func(a *App) {
		if fn != nil {
			a.routes = append(a.routes, fn)
		}
	}
}

// WithTree serves an already assembled tree. Routes added with WithRoutes
// are registered on it as well.
func WithTree(t *Tree) Option {
	return func(a *App) {
		if t != nil {
			a.tree = t
		}
	}
}

// WithMiddleware adds net/http middleware around every request, health
// probes included. The first one given is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHealthChecks serves liveness and readiness endpoints outside the tree.
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger builds a JSON logger tagged with component.
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets the App logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithServiceName names the server span operation. Defaults to "newsdesk".
func WithServiceName(name string) Option {
	return func(a *App) {
		if name != "" {
			a.serviceName = name
		}
	}
}

// WithSession enables server-side sessions backed by store.
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessionManager = NewSessionManager(store, opts...)
	}
}

// WithJobs hands the job manager to the App, which starts it before
// serving and stops it on shutdown.
func WithJobs(m *job.Manager) Option {
	return func(a *App) {
		a.jobs = m
	}
}
