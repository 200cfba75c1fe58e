package newsdesk

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/newsdesk/internal"
	"github.com/dmitrymomot/newsdesk/pkg/health"
	"github.com/dmitrymomot/newsdesk/pkg/job"
	"github.com/dmitrymomot/newsdesk/pkg/logger"
	"github.com/dmitrymomot/newsdesk/pkg/schema"
	"github.com/dmitrymomot/newsdesk/pkg/session"
)

type (
	// App serves a frozen route tree.
	App = internal.App

	// Context is the per-request context handed to stages and handlers.
	Context = internal.Context

	// Option configures the App.
	Option = internal.Option

	// RunOption configures App.Run.
	RunOption = internal.RunOption

	// HealthOption configures the liveness and readiness endpoints.
	HealthOption = internal.HealthOption

	// SessionOption configures the session cookie.
	SessionOption = internal.SessionOption

	// EndpointOption configures an endpoint at Finalize.
	EndpointOption = internal.EndpointOption

	// Middleware wraps the whole App as plain net/http.
	Middleware = internal.Middleware

	// Stage is one step of a procedure.
	Stage = internal.Stage

	// Result is what a stage returns: continue with fields, or halt.
	Result = internal.Result

	// Decl names a request local and its type.
	Decl = internal.Decl

	// Field is a value for a request local, built with Key.Field.
	Field = internal.Field

	// Locals holds the request locals introduced by stages.
	Locals = internal.Locals

	// Procedure is an immutable chain of stages.
	Procedure = internal.Procedure

	// Endpoint is a finalized procedure bound to a method and path.
	Endpoint = internal.Endpoint

	// Empty stands in for an input, query or output an endpoint does not have.
	Empty = internal.Empty

	// Tree is the route tree.
	Tree = internal.Tree

	// Node is a path prefix in the route tree.
	Node = internal.Node

	// Route is a registered endpoint with its full path.
	Route = internal.Route

	// Routes maps path suffixes to endpoints by method.
	Routes = internal.Routes

	// Methods maps HTTP methods to endpoints.
	Methods = internal.Methods

	// Params holds path parameters of a matched route.
	Params = internal.Params

	// Descriptor describes an endpoint for client generation.
	Descriptor = internal.Descriptor

	// Principal is an authenticated user with roles.
	Principal = internal.Principal

	// Error is a failure rendered into the response envelope.
	Error = internal.Error

	// ErrorKind classifies an Error and picks its status code.
	ErrorKind = internal.ErrorKind

	// FieldError is one failing field of a validation error.
	FieldError = internal.FieldError

	// ErrorOption configures an Error.
	ErrorOption = internal.ErrorOption

	// Envelope is the JSON body of every response.
	Envelope = internal.Envelope

	// Extractor reads a value from the first source that has it.
	Extractor = internal.Extractor

	// ExtractorSource reads a value from one part of the request.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor adds a request-scoped attribute to logs.
	ContextExtractor = logger.ContextExtractor

	// Session is a server-side session.
	Session = session.Session

	// SessionStore persists sessions.
	SessionStore = session.Store

	// JobManager enqueues and runs background tasks.
	JobManager = job.Manager
)

// Key is a typed handle to a request local.
type Key[T any] = internal.Key[T]

// Auth is the capability returned by Authenticate.
type Auth[U Principal] = internal.Auth[U]

// Authenticator resolves the user of a request.
type Authenticator[U Principal] = internal.Authenticator[U]

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc[U Principal] = internal.AuthenticatorFunc[U]

// Error kinds.
const (
	KindValidation     = internal.KindValidation
	KindAuthentication = internal.KindAuthentication
	KindAuthorization  = internal.KindAuthorization
	KindNotFound       = internal.KindNotFound
	KindInternal       = internal.KindInternal
)

// Authentication and routing errors.
var (
	ErrNoCredentials      = internal.ErrNoCredentials
	ErrInvalidCredentials = internal.ErrInvalidCredentials
	ErrDuplicateRoute     = internal.ErrDuplicateRoute
)

// New builds an App and freezes its routes. It panics on duplicate routes.
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewTree returns an empty route tree.
func NewTree() *Tree {
	return internal.NewTree()
}

// Procedures

// Base returns the empty procedure every chain starts from.
func Base() Procedure {
	return internal.Base()
}

// Continue lets the request proceed and introduces fields.
func Continue(fields ...Field) Result {
	return internal.Continue(fields...)
}

// Halt stops the request and renders err.
func Halt(err error) Result {
	return internal.Halt(err)
}

// HaltWith stops the request with a successful response.
func HaltWith(status int, data any) Result {
	return internal.HaltWith(status, data)
}

// NewKey returns a typed key for a request local.
func NewKey[T any](name string) Key[T] {
	return internal.NewKey[T](name)
}

// InputKey is the key WithBody stores the validated body under.
func InputKey[T any]() Key[T] {
	return internal.InputKey[T]()
}

// QueryKey is the key WithQuery stores the validated query under.
func QueryKey[T any]() Key[T] {
	return internal.QueryKey[T]()
}

// WithBody validates the JSON body into T and stores it as the input local.
func WithBody[T any](p Procedure, opts ...schema.Option) Procedure {
	return internal.WithBody[T](p, opts...)
}

// WithQuery validates the query string into T and stores it as the query local.
func WithQuery[T any](p Procedure, opts ...schema.Option) Procedure {
	return internal.WithQuery[T](p, opts...)
}

// Finalize binds a procedure to a method, a path and a handler.
func Finalize[In, Q, Out any](p Procedure, method, path string, h func(c Context, in In, q Q) (Out, error), opts ...EndpointOption) *Endpoint {
	return internal.Finalize(p, method, path, h, opts...)
}

// Named sets the client method name.
func Named(name string) EndpointOption {
	return internal.Named(name)
}

// Summary sets a one-line description for the client.
func Summary(s string) EndpointOption {
	return internal.Summary(s)
}

// Status sets the success status code.
func Status(code int) EndpointOption {
	return internal.Status(code)
}

// Upload declares a multipart file field.
func Upload(field string) EndpointOption {
	return internal.Upload(field)
}

// Access control

// Authenticate extends p with an authentication stage and returns the
// capability needed to build role guards.
func Authenticate[U Principal](p Procedure, a Authenticator[U]) (Procedure, Auth[U]) {
	return internal.Authenticate(p, a)
}

// RequireRoles returns a stage that admits users holding any of roles.
func RequireRoles[U Principal](auth Auth[U], roles ...string) Stage {
	return internal.RequireRoles(auth, roles...)
}

// Guard extends p with RequireRoles.
func Guard[U Principal](p Procedure, auth Auth[U], roles ...string) Procedure {
	return internal.Guard(p, auth, roles...)
}

// SessionAuthenticator authenticates through the session cookie.
func SessionAuthenticator[U Principal](load func(c Context, userID string) (U, error)) Authenticator[U] {
	return internal.SessionAuthenticator(load)
}

// BearerAuthenticator authenticates with an Authorization bearer token.
func BearerAuthenticator[U Principal](load func(c Context, token string) (U, error)) Authenticator[U] {
	return internal.BearerAuthenticator(load)
}

// AnyAuthenticator tries each authenticator in order.
func AnyAuthenticator[U Principal](auths ...Authenticator[U]) Authenticator[U] {
	return internal.AnyAuthenticator(auths...)
}

// Errors

// ErrValidation returns a 400 error listing the failing fields.
func ErrValidation(fields []FieldError, opts ...ErrorOption) *Error {
	return internal.ErrValidation(fields, opts...)
}

// ErrUnauthenticated returns a 401 error.
func ErrUnauthenticated(message string, opts ...ErrorOption) *Error {
	return internal.ErrUnauthenticated(message, opts...)
}

// ErrForbidden returns a 403 error.
func ErrForbidden(message string, opts ...ErrorOption) *Error {
	return internal.ErrForbidden(message, opts...)
}

// ErrNotFound returns a 404 error.
func ErrNotFound(message string, opts ...ErrorOption) *Error {
	return internal.ErrNotFound(message, opts...)
}

// WithCause attaches err for logging without exposing it to callers.
func WithCause(err error) ErrorOption {
	return internal.WithCause(err)
}

// ErrInternal returns a 500 error that hides err from the client.
func ErrInternal(err error) *Error {
	return internal.ErrInternal(err)
}

// AsError finds an *Error in err's chain.
func AsError(err error) *Error {
	return internal.AsError(err)
}

// Request helpers

// Param converts a path parameter to T.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query converts a query value to T.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault is Query with a fallback for absent values.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, def T) T {
	return internal.QueryDefault(c, name, def)
}

// NewExtractor returns an Extractor over sources.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromQuery reads a query value.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromCookie reads a cookie.
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }

// FromParam reads a path parameter.
func FromParam(name string) ExtractorSource { return internal.FromParam(name) }

// FromBearerToken reads the token of an Authorization bearer header.
func FromBearerToken() ExtractorSource { return internal.FromBearerToken() }

// UserIDFromContext returns the ID of the authenticated user, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	return internal.UserIDFromContext(ctx)
}

// UserIDExtractor adds user_id to request logs.
func UserIDExtractor() ContextExtractor {
	return internal.UserIDExtractor()
}

// App options

// WithRoutes registers routes on the root node.
func WithRoutes(fn func(root *Node)) Option {
	return internal.WithRoutes(fn)
}

// WithTree uses a prebuilt tree.
func WithTree(t *Tree) Option {
	return internal.WithTree(t)
}

// WithMiddleware wraps the App, outermost first.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHealthChecks enables the health endpoints.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger builds a JSON logger tagged with component.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets the App logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithServiceName names the tracer and logs.
func WithServiceName(name string) Option {
	return internal.WithServiceName(name)
}

// WithSession enables server-side sessions.
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithJobs starts and stops m with the App.
func WithJobs(m *JobManager) Option {
	return internal.WithJobs(m)
}

// Health options

// WithLivenessPath overrides the liveness path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath overrides the readiness path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Session options

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionMaxAge sets the session lifetime in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return internal.WithSessionMaxAge(seconds)
}

// WithSessionDomain sets the cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return internal.WithSessionDomain(domain)
}

// WithSessionSecure sets the cookie Secure flag.
func WithSessionSecure(secure bool) SessionOption {
	return internal.WithSessionSecure(secure)
}

// WithSessionSameSite sets the cookie SameSite mode.
func WithSessionSameSite(mode http.SameSite) SessionOption {
	return internal.WithSessionSameSite(mode)
}

// Run options

// Logger sets the logger used by Run.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout bounds graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook runs fn before the server listens.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook runs fn after the server stops.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context of Run.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}
