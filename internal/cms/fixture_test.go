package cms_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/newsdesk"
	"github.com/dmitrymomot/newsdesk/internal/cms"
	"github.com/dmitrymomot/newsdesk/internal/cms/memstore"
	"github.com/dmitrymomot/newsdesk/pkg/cookie"
	"github.com/dmitrymomot/newsdesk/pkg/id"
	"github.com/dmitrymomot/newsdesk/pkg/oauth"
	"github.com/dmitrymomot/newsdesk/pkg/session"
	"github.com/dmitrymomot/newsdesk/pkg/storage"
)

var (
	_ cms.PostStore   = (*memstore.Store)(nil)
	_ cms.UserStore   = (*memstore.Store)(nil)
	_ cms.ImageStore  = (*memstore.Store)(nil)
	_ cms.SearchIndex = (*memstore.Search)(nil)
	_ cms.Scheduler   = (*memstore.Scheduler)(nil)
)

const cookieSecret = "0123456789abcdef0123456789abcdef"

// Bearer tokens of the seeded staff.
const (
	adminToken    = "admin-token"
	editorToken   = "editor-token"
	writerToken   = "writer-token"
	disabledToken = "disabled-token"
)

type fixture struct {
	app    *newsdesk.App
	h      *cms.Handlers
	store  *memstore.Store
	search *memstore.Search
	sched  *memstore.Scheduler
	files  *storage.Memory

	admin, editor, writer *cms.User
}

type fixtureOption func(*cms.Deps)

func withoutOAuth() fixtureOption {
	return func(d *cms.Deps) { d.OAuth = nil }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	f := &fixture{
		store:  memstore.New(),
		search: memstore.NewSearch(),
		files:  storage.NewMemory("https://cdn.example.com"),
	}
	f.sched = memstore.NewScheduler(f.store)

	f.admin = f.addUser(cms.RoleAdmin, "admin@example.com", adminToken, false)
	f.editor = f.addUser(cms.RoleEditor, "editor@example.com", editorToken, false)
	f.writer = f.addUser(cms.RoleWriter, "writer@example.com", writerToken, false)
	f.addUser(cms.RoleEditor, "gone@example.com", disabledToken, true)

	d := cms.Deps{
		Posts:     f.store,
		Users:     f.store,
		Images:    f.store,
		Search:    f.search,
		Scheduler: f.sched,
		Files:     f.files,
		OAuth:     &fakeProvider{emails: map[string]string{"editor-code": "Editor@Example.com", "stranger-code": "who@example.com", "gone-code": "gone@example.com"}},
		Cookies:   cookie.New(cookie.WithSecret(cookieSecret)),
	}
	for _, opt := range opts {
		opt(&d)
	}

	f.h = cms.NewHandlers(d)
	f.app = newsdesk.New(
		newsdesk.WithRoutes(f.h.Routes),
		newsdesk.WithSession(session.NewMemoryStore()),
	)
	return f
}

func (f *fixture) addUser(role, email, token string, disabled bool) *cms.User {
	u := f.store.AddUser(&cms.User{
		ID:        id.New(),
		Email:     email,
		Name:      strings.ToUpper(role[:1]) + role[1:],
		Role:      role,
		Disabled:  disabled,
		CreatedAt: time.Now().UTC(),
	})
	f.store.AddToken(u.ID, token)
	return u
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Kind    string                `json:"kind"`
		Message string                `json:"message"`
		Fields  []newsdesk.FieldError `json:"fields"`
	} `json:"error"`
	OK bool `json:"ok"`
}

func (e envelope) fieldNames() []string {
	if e.Error == nil {
		return nil
	}
	names := make([]string, 0, len(e.Error.Fields))
	for _, f := range e.Error.Fields {
		names = append(names, f.Field)
	}
	return names
}

type reqOption func(*http.Request)

func bearer(token string) reqOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookies(cs ...*http.Cookie) reqOption {
	return func(r *http.Request) {
		for _, c := range cs {
			r.AddCookie(c)
		}
	}
}

// call sends a request with an optional JSON body and decodes the envelope.
func (f *fixture) call(t *testing.T, method, target, body string, opts ...reqOption) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	return f.send(t, req)
}

func (f *fixture) send(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// fakeProvider maps authorization codes to e-mail addresses.
type fakeProvider struct {
	emails map[string]string
}

func (p *fakeProvider) Name() string { return "google" }

func (p *fakeProvider) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://accounts.example.com/o/oauth2/auth?" + url.Values{"state": {state}}.Encode()
}

func (p *fakeProvider) Exchange(_ context.Context, code, _ string) (*oauth2.Token, error) {
	if _, ok := p.emails[code]; !ok {
		return nil, errors.New("bad code")
	}
	return &oauth2.Token{AccessToken: code}, nil
}

func (p *fakeProvider) FetchUserInfo(_ context.Context, token *oauth2.Token) (*oauth.UserInfo, error) {
	return &oauth.UserInfo{ID: token.AccessToken, Email: p.emails[token.AccessToken]}, nil
}
