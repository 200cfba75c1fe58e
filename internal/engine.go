package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dmitrymomot/newsdesk"

type userIDContextKey struct{}

// engine runs requests through endpoint stages and writes exactly one
// response per request.
type engine struct {
	logger   *slog.Logger
	sessions *SessionManager
	tracer   trace.Tracer
}

func newEngine(logger *slog.Logger, sessions *SessionManager) *engine {
	return &engine{
		logger:   logger,
		sessions: sessions,
		tracer:   otel.Tracer(tracerName),
	}
}

func (e *engine) serve(w http.ResponseWriter, r *http.Request, route *Route, params Params) {
	ctx, span := e.tracer.Start(r.Context(), route.Method+" "+route.Path,
		trace.WithAttributes(
			attribute.String("http.route", route.Path),
			attribute.String("newsdesk.endpoint", route.Name),
		),
	)
	defer span.End()

	c := newContext(NewResponseWriter(w), r.WithContext(ctx), e.logger, e.sessions)
	c.params = params
	e.run(c, route.Endpoint)
}

func (e *engine) run(c *requestContext, ep *Endpoint) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic: %v", rec)
			c.LogError("panic recovered", "error", err, "stack", string(debug.Stack()))
			e.fail(c, ErrInternal(err))
		}
	}()

	for _, st := range ep.stages {
		if !e.proceed(c, st.Name) {
			return
		}
		res := e.runStage(c, st)
		if res.halted {
			if res.err != nil {
				e.fail(c, toError(res.err))
			} else {
				e.write(c, res.status, Envelope{OK: true, Data: res.data})
			}
			return
		}
		if err := e.apply(c, st, res.fields); err != nil {
			c.LogError("stage broke its locals contract", "stage", st.Name, "error", err)
			e.fail(c, ErrInternal(err))
			return
		}
	}

	if !e.proceed(c, "handler") {
		return
	}
	out, err := ep.invoke(c)
	if err != nil {
		e.fail(c, toError(err))
		return
	}
	e.write(c, ep.status, Envelope{OK: true, Data: out})
}

// proceed checks the request context before the next step. A cancelled
// request is abandoned silently; an expired deadline is an internal error.
func (e *engine) proceed(c *requestContext, next string) bool {
	err := c.Err()
	switch {
	case err == nil:
		return true
	case errors.Is(err, context.DeadlineExceeded):
		c.LogWarn("request deadline exceeded", "next", next)
		e.fail(c, ErrInternal(err))
	default:
		c.LogDebug("request cancelled by client", "next", next)
	}
	return false
}

func (e *engine) runStage(c *requestContext, st Stage) Result {
	parent := c.request.Context()
	ctx, span := e.tracer.Start(parent, "stage "+st.Name)
	c.withContext(ctx)
	defer func() {
		span.End()
		c.withContext(parent)
	}()

	res := st.Run(c)
	if res.halted {
		span.SetAttributes(attribute.Bool("newsdesk.halted", true))
	}
	return res
}

// apply merges a stage patch after checking it against the stage's declared
// Provides.
func (e *engine) apply(c *requestContext, st Stage, fields []Field) error {
	for _, f := range fields {
		if !declares(st.Provides, f) {
			return fmt.Errorf("%w: stage %q set %s(%s)", ErrUndeclaredLocal, st.Name, f.name, f.typ)
		}
	}
	if err := c.locals.merge(fields); err != nil {
		return err
	}
	for _, d := range st.Provides {
		if t, ok := c.locals.typeOf(d.Name); !ok || t != d.Type {
			return fmt.Errorf("%w: stage %q did not set %s", ErrMissingLocal, st.Name, d)
		}
	}
	for _, f := range fields {
		if p, ok := f.value.(Principal); ok && f.name == FieldUser {
			c.withContext(context.WithValue(c.request.Context(), userIDContextKey{}, p.PrincipalID()))
		}
	}
	return nil
}

func declares(decls []Decl, f Field) bool {
	for _, d := range decls {
		if d.Name == f.name && d.Type == f.typ {
			return true
		}
	}
	return false
}

func (e *engine) fail(c *requestContext, err *Error) {
	span := trace.SpanFromContext(c.request.Context())
	if err.Kind == KindInternal {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.LogError("request failed", "error", err.Error())
	} else {
		span.SetAttributes(attribute.String("newsdesk.error_kind", string(err.Kind)))
		c.LogDebug("request rejected", "kind", err.Kind, "message", err.Message)
	}
	e.write(c, err.StatusCode(), errorEnvelope(err))
}

func (e *engine) write(c *requestContext, status int, env Envelope) {
	if c.Written() {
		c.LogWarn("response already written, dropping envelope", "status", status, "ok", env.OK)
		return
	}

	body, err := json.Marshal(env)
	if err != nil {
		c.LogError("failed to encode response", "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorEnvelope(ErrInternal(err)))
	}

	h := c.responseWriter.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	c.responseWriter.WriteHeader(status)
	if _, err := c.responseWriter.Write(append(body, '\n')); err != nil {
		c.LogDebug("failed to write response", "error", err)
	}
}

// writeError renders err for requests that never reached an endpoint.
func writeError(w http.ResponseWriter, err *Error) {
	body, _ := json.Marshal(errorEnvelope(err))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(err.StatusCode())
	_, _ = w.Write(append(body, '\n'))
}

// UserIDFromContext returns the ID of the user authenticated for the request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDContextKey{}).(string)
	return v, ok && v != ""
}

// UserIDExtractor adds user_id to log records of authenticated requests.
func UserIDExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := UserIDFromContext(ctx); ok {
			return slog.String("user_id", v), true
		}
		return slog.Attr{}, false
	}
}
