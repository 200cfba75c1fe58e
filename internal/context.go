package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/newsdesk/pkg/session"
)

// Context is what stages and handlers receive. It implements context.Context
// by delegating to the request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// Param returns the path parameter value by name.
	// Returns empty string if the parameter doesn't exist.
	Param(name string) string

	// Query returns the query parameter value by name.
	Query(name string) string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// Cookie returns the value of a request cookie.
	Cookie(name string) (string, error)

	// SetCookie sets an HttpOnly cookie scoped to the root path.
	SetCookie(name, value string, maxAge int)

	// Locals returns the request-scoped fields accumulated by stages.
	Locals() *Locals

	// Written reports whether the response has been started.
	Written() bool

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Session loads the session for the request, lazily.
	// Returns nil without error when the request carries no session cookie.
	Session() (*session.Session, error)

	// AuthenticateSession binds userID to the session, creating one if needed,
	// and rotates its token.
	AuthenticateSession(userID string) error

	// DestroySession deletes the session and expires its cookie.
	DestroySession() error
}

type requestContext struct {
	request        *http.Request
	responseWriter *ResponseWriter
	logger         *slog.Logger
	locals         *Locals
	params         map[string]string

	sessionManager *SessionManager
	session        *session.Session

	sessionLoaded         bool
	sessionHookRegistered bool
}

func newContext(rw *ResponseWriter, r *http.Request, logger *slog.Logger, sm *SessionManager) *requestContext {
	return &requestContext{
		request:        r,
		responseWriter: rw,
		logger:         logger,
		locals:         newLocals(),
		sessionManager: sm,
	}
}

// withContext swaps the request context, e.g. to carry a tracing span.
func (c *requestContext) withContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

// Request returns the underlying request.
func (c *requestContext) Request() *http.Request {
	return c.request
}

// Response returns the tracking response writer.
func (c *requestContext) Response() http.ResponseWriter {
	return c.responseWriter
}

// Param returns a path parameter.
func (c *requestContext) Param(name string) string {
	return c.params[name]
}

// Query returns a query value.
func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

// Deadline implements context.Context.
func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

// Done implements context.Context.
func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

// Err implements context.Context.
func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

// Value implements context.Context.
func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

// Header returns a request header.
func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

// SetHeader sets a response header.
func (c *requestContext) SetHeader(name, value string) {
	c.responseWriter.Header().Set(name, value)
}

// Cookie returns a request cookie's value.
func (c *requestContext) Cookie(name string) (string, error) {
	ck, err := c.request.Cookie(name)
	if err != nil {
		return "", err
	}
	return ck.Value, nil
}

// SetCookie sets an HttpOnly cookie on the response.
func (c *requestContext) SetCookie(name, value string, maxAge int) {
	http.SetCookie(c.responseWriter, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.request.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// Locals returns the request locals.
func (c *requestContext) Locals() *Locals {
	return c.locals
}

// Written reports whether the response was started.
func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

// Logger returns the request logger.
func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

// LogDebug logs at debug level with the request context.
func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

// LogInfo logs at info level with the request context.
func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

// LogWarn logs at warn level with the request context.
func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

// LogError logs at error level with the request context.
func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

// registerSessionHook persists a dirty session right before the response
// headers go out, so handlers never have to save it explicitly.
func (c *requestContext) registerSessionHook() {
	if c.sessionHookRegistered || c.sessionManager == nil {
		return
	}
	c.sessionHookRegistered = true
	c.responseWriter.OnBeforeWrite(func() {
		if c.session != nil && c.session.IsDirty() {
			if err := c.sessionManager.Store().Update(c.request.Context(), c.session); err != nil {
				c.logger.ErrorContext(c.request.Context(), "failed to save session", "error", err)
				return
			}
			c.session.ClearDirty()
		}
	})
}

// Session loads the request's session. It is nil when the request carries none.
func (c *requestContext) Session() (*session.Session, error) {
	if c.sessionManager == nil {
		return nil, session.ErrNotConfigured
	}

	c.registerSessionHook()

	if c.sessionLoaded {
		return c.session, nil
	}

	sess, err := c.sessionManager.LoadSession(c.request.Context(), c.request)
	if err != nil {
		return nil, err
	}

	c.session = sess
	c.sessionLoaded = true
	return c.session, nil
}

// AuthenticateSession binds userID to the session and rotates its token.
func (c *requestContext) AuthenticateSession(userID string) error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}

	sess, err := c.Session()
	if err != nil {
		c.LogWarn("failed to load session", "error", err)
	}
	if sess == nil {
		sess, err = c.sessionManager.CreateSession(c.request.Context(), c.request)
		if err != nil {
			return err
		}
		c.session = sess
		c.sessionLoaded = true
	}

	sess.UserID = &userID
	sess.MarkDirty()

	if err := c.sessionManager.RotateToken(c.request.Context(), sess); err != nil {
		return err
	}

	c.sessionManager.SaveSession(c.responseWriter, sess)
	return nil
}

// DestroySession deletes the session and expires its cookie.
func (c *requestContext) DestroySession() error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}

	if !c.sessionLoaded {
		if _, err := c.Session(); err != nil {
			c.LogWarn("failed to load session", "error", err)
		}
	}
	if c.session != nil {
		if err := c.sessionManager.Store().Delete(c.request.Context(), c.session.ID); err != nil {
			return err
		}
	}

	c.sessionManager.DeleteSession(c.responseWriter)

	c.session = nil
	c.sessionLoaded = true
	return nil
}
