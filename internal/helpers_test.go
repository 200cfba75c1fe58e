package internal_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/internal"
)

type staff struct {
	ID    string
	Roles []string
}

func (s *staff) PrincipalID() string      { return s.ID }
func (s *staff) PrincipalRoles() []string { return s.Roles }

var tokens = map[string]*staff{
	"admin-token":  {ID: "u-admin", Roles: []string{"admin"}},
	"editor-token": {ID: "u-editor", Roles: []string{"editor"}},
	"writer-token": {ID: "u-writer", Roles: []string{"writer"}},
}

func bearer() internal.Authenticator[*staff] {
	return internal.BearerAuthenticator(func(_ internal.Context, token string) (*staff, error) {
		if u, ok := tokens[token]; ok {
			return u, nil
		}
		return nil, internal.ErrInvalidCredentials
	})
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
		Fields  []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"fields"`
	} `json:"error"`
	OK bool `json:"ok"`
}

func (e envelope) fieldNames() []string {
	if e.Error == nil {
		return nil
	}
	names := make([]string, len(e.Error.Fields))
	for i, f := range e.Error.Fields {
		names[i] = f.Field
	}
	return names
}

func newApp(routes func(root *internal.Node), opts ...internal.Option) *internal.App {
	return internal.New(append(opts, internal.WithRoutes(routes))...)
}

type request struct {
	method  string
	target  string
	body    string
	headers map[string]string
}

func send(t *testing.T, h http.Handler, r request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.target, body)
	if r.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type slug string

func TestParamAndQueryHelpers(t *testing.T) {
	t.Parallel()

	type out struct {
		ID      int     `json:"id"`
		Slug    slug    `json:"slug"`
		Page    int64   `json:"page"`
		Ratio   float64 `json:"ratio"`
		Draft   bool    `json:"draft"`
		Limit   int     `json:"limit"`
		Missing int     `json:"missing"`
	}

	app := newApp(func(root *internal.Node) {
		root.Config(internal.Finalize(internal.Base(), http.MethodGet, "/items/{id}/{slug}",
			func(c internal.Context, _ internal.Empty, _ internal.Empty) (out, error) {
				return out{
					ID:      internal.Param[int](c, "id"),
					Slug:    internal.Param[slug](c, "slug"),
					Page:    internal.Query[int64](c, "page"),
					Ratio:   internal.Query[float64](c, "ratio"),
					Draft:   internal.Query[bool](c, "draft"),
					Limit:   internal.QueryDefault(c, "limit", 20),
					Missing: internal.Query[int](c, "nope"),
				}, nil
			}))
	})

	rec, env := send(t, app, request{method: http.MethodGet, target: "/items/42/hello-world?page=3&ratio=0.5&draft=true&limit=oops"})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[out](t, env.Data)
	assert.Equal(t, out{ID: 42, Slug: "hello-world", Page: 3, Ratio: 0.5, Draft: true, Limit: 20}, got)
}

func TestErrorConstructors(t *testing.T) {
	t.Parallel()

	cause := errors.New("db: connection reset")

	tests := []struct {
		err     *internal.Error
		kind    internal.ErrorKind
		message string
		status  int
	}{
		{internal.ErrValidation([]internal.FieldError{{Field: "title", Message: "field is required"}}), internal.KindValidation, "validation failed", http.StatusBadRequest},
		{internal.ErrUnauthenticated(""), internal.KindAuthentication, "authentication required", http.StatusUnauthorized},
		{internal.ErrForbidden("editors only"), internal.KindAuthorization, "editors only", http.StatusForbidden},
		{internal.ErrNotFound(""), internal.KindNotFound, "not found", http.StatusNotFound},
		{internal.ErrInternal(cause), internal.KindInternal, "internal server error", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.message, tt.err.Message)
			assert.Equal(t, tt.status, tt.err.StatusCode())
		})
	}

	t.Run("internal error keeps its cause for logs", func(t *testing.T) {
		t.Parallel()
		err := internal.ErrInternal(cause)
		require.ErrorIs(t, err, cause)
	})

	t.Run("AsError sees through wrapping", func(t *testing.T) {
		t.Parallel()
		wrapped := errors.Join(errors.New("context"), internal.ErrNotFound("post not found"))
		require.True(t, internal.IsError(wrapped))
		assert.Equal(t, internal.KindNotFound, internal.AsError(wrapped).Kind)
		assert.Nil(t, internal.AsError(cause))
	})
}

func TestExtractor(t *testing.T) {
	t.Parallel()

	ex := internal.NewExtractor(
		internal.FromHeader("X-Api-Key"),
		internal.FromBearerToken(),
		internal.FromQuery("token"),
		internal.FromCookie("token"),
		internal.FromParam("token"),
	)

	app := newApp(func(root *internal.Node) {
		root.Config(internal.Finalize(internal.Base(), http.MethodGet, "/whoami",
			func(c internal.Context, _ internal.Empty, _ internal.Empty) (string, error) {
				v, ok := ex.Extract(c)
				if !ok {
					return "", internal.ErrUnauthenticated("")
				}
				return v, nil
			}))
	})

	tests := []struct {
		name    string
		target  string
		headers map[string]string
		want    string
		status  int
	}{
		{"header wins", "/whoami?token=q", map[string]string{"X-Api-Key": "h", "Authorization": "Bearer b"}, "h", http.StatusOK},
		{"bearer scheme is case insensitive", "/whoami", map[string]string{"Authorization": "bearer b"}, "b", http.StatusOK},
		{"non-bearer scheme is ignored", "/whoami?token=q", map[string]string{"Authorization": "Basic abc"}, "q", http.StatusOK},
		{"cookie", "/whoami", map[string]string{"Cookie": "token=c"}, "c", http.StatusOK},
		{"nothing", "/whoami", nil, "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, env := send(t, app, request{method: http.MethodGet, target: tt.target, headers: tt.headers})
			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.want, decode[string](t, env.Data))
			}
		})
	}
}
