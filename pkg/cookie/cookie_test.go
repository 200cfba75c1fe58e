package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/pkg/cookie"
)

const testSecret = "this-is-a-32-byte-or-longer-key!"

// roundTrip copies the cookies written to rec into a new request.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestPlainCookies(t *testing.T) {
	t.Parallel()

	m := cookie.New(cookie.WithDomain("example.com"), cookie.WithSecure(true))

	_, err := m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "missing")
	require.ErrorIs(t, err, cookie.ErrNotFound)

	rec := httptest.NewRecorder()
	m.Set(rec, "theme", "dark", 3600)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "example.com", cookies[0].Domain)
	assert.True(t, cookies[0].Secure)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	v, err := m.Get(roundTrip(rec), "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)

	rec = httptest.NewRecorder()
	m.Delete(rec, "theme")
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestSignedCookies(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := cookie.New(cookie.WithSecret(testSecret), cookie.WithClock(clock))

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetSigned(rec, "state", "abc123", 10*time.Minute))
	assert.Equal(t, 600, rec.Result().Cookies()[0].MaxAge)

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		v, err := m.GetSigned(roundTrip(rec), "state")
		require.NoError(t, err)
		assert.Equal(t, "abc123", v)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		later := cookie.New(cookie.WithSecret(testSecret), cookie.WithClock(func() time.Time {
			return now.Add(11 * time.Minute)
		}))
		_, err := later.GetSigned(roundTrip(rec), "state")
		assert.ErrorIs(t, err, cookie.ErrExpired)
	})

	t.Run("other secret", func(t *testing.T) {
		t.Parallel()
		other := cookie.New(cookie.WithSecret(strings.Repeat("x", 32)), cookie.WithClock(clock))
		_, err := other.GetSigned(roundTrip(rec), "state")
		assert.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "state", Value: "bm90LXNpZ25lZA.c2ln"})
		_, err := m.GetSigned(r, "state")
		assert.ErrorIs(t, err, cookie.ErrBadSig)

		r = httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "state", Value: "no-dot"})
		_, err = m.GetSigned(r, "state")
		assert.ErrorIs(t, err, cookie.ErrBadSig)
	})
}

func TestSignedCookiesNeedSecret(t *testing.T) {
	t.Parallel()

	m := cookie.New(cookie.WithSecret("too-short"))
	assert.ErrorIs(t, m.SetSigned(httptest.NewRecorder(), "state", "v", time.Minute), cookie.ErrNoSecret)

	_, err := m.GetSigned(httptest.NewRequest(http.MethodGet, "/", nil), "state")
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	assert.ErrorIs(t, cookie.CheckSecret("too-short"), cookie.ErrBadSecret)
	assert.NoError(t, cookie.CheckSecret(testSecret))
}
