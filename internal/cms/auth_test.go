package cms_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/api"
)

// login runs the Google flow for code and returns the callback response.
func login(t *testing.T, f *fixture, code string) (*http.Cookie, *http.Cookie, int, envelope) {
	t.Helper()

	rec, env := f.call(t, http.MethodGet, "/auth/google", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	consent, err := url.Parse(decode[api.LoginURL](t, env).URL)
	require.NoError(t, err)
	state := consent.Query().Get("state")
	require.NotEmpty(t, state)
	stateCookie := findCookie(rec, "oauth_state")
	require.NotNil(t, stateCookie)

	rec, env = f.call(t, http.MethodGet,
		"/auth/google/callback?"+url.Values{"code": {code}, "state": {state}}.Encode(), "",
		withCookies(stateCookie))
	return stateCookie, findCookie(rec, "__sid"), rec.Code, env
}

func TestGoogleSignIn(t *testing.T) {
	t.Parallel()

	t.Run("session cookie authorizes editors", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, sid, code, env := login(t, f, "editor-code")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, f.editor.API(), decode[api.User](t, env))
		require.NotNil(t, sid)

		rec, env := f.call(t, http.MethodGet, "/auth/me", "", withCookies(sid))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, f.editor.ID, decode[api.User](t, env).ID)

		rec, env = f.call(t, http.MethodPost, "/posts/gallery", galleryBody(nil), withCookies(sid))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, f.editor.ID, decode[api.Post](t, env).AuthorID)

		rec, env = f.call(t, http.MethodPost, "/auth/logout", "", withCookies(sid))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, api.Deleted{ID: f.editor.ID}, decode[api.Deleted](t, env))

		rec, _ = f.call(t, http.MethodGet, "/auth/me", "", withCookies(sid))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown e-mail is forbidden", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, sid, code, env := login(t, f, "stranger-code")
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "authorization_error", env.Error.Kind)
		assert.Nil(t, sid)
	})

	t.Run("disabled account is forbidden", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, _, code, _ := login(t, f, "gone-code")
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("rejected code is unauthenticated", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, _, code, _ := login(t, f, "forged-code")
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("state must match the cookie", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec, _ := f.call(t, http.MethodGet, "/auth/google", "")
		stateCookie := findCookie(rec, "oauth_state")
		require.NotNil(t, stateCookie)

		rec, env := f.call(t, http.MethodGet, "/auth/google/callback?code=editor-code&state=guessed", "",
			withCookies(stateCookie))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid oauth state", env.Error.Message)

		rec, _ = f.call(t, http.MethodGet, "/auth/google/callback?code=editor-code&state=guessed", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("callback needs code and state", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec, env := f.call(t, http.MethodGet, "/auth/google/callback", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.ElementsMatch(t, []string{"code", "state"}, env.fieldNames())
	})

	t.Run("disabled provider", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, withoutOAuth())

		rec, _ := f.call(t, http.MethodGet, "/auth/google", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
