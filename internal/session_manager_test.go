package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/pkg/session"
)

type failingUpdateStore struct {
	*session.MemoryStore
	err error
}

func (s failingUpdateStore) Update(context.Context, *session.Session) error { return s.err }

func TestSessionManagerLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore()
	sm := NewSessionManager(store, WithSessionCookieName("sid"), WithSessionSecure(true))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("User-Agent", "newsdesk-test")

	sess, err := sm.LoadSession(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, sess, "no cookie means no session")

	sess, err = sm.CreateSession(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", sess.IP)
	assert.Equal(t, "newsdesk-test", sess.UserAgent)
	assert.Len(t, sess.Token, 43)

	oldToken := sess.Token
	require.NoError(t, sm.RotateToken(ctx, sess))
	assert.NotEqual(t, oldToken, sess.Token)
	assert.False(t, sess.IsDirty())

	rec := httptest.NewRecorder()
	sm.SaveSession(rec, sess)
	cookie := rec.Result().Cookies()[0]
	assert.Equal(t, "sid", cookie.Name)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	withCookie := func(token string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: token})
		return r
	}

	loaded, err := sm.LoadSession(ctx, withCookie(sess.Token))
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, sess.ID, loaded.ID)

	loaded, err = sm.LoadSession(ctx, withCookie(oldToken))
	require.NoError(t, err)
	assert.Nil(t, loaded, "rotated tokens stop working")

	rec = httptest.NewRecorder()
	sm.DeleteSession(rec)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestSessionManagerExpiredSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore()
	sm := NewSessionManager(store)

	sess := session.New("s1", "token-1", time.Now().Add(-time.Minute))
	require.NoError(t, store.Create(ctx, sess))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "token-1"})

	loaded, err := sm.LoadSession(ctx, r)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRotateTokenRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := assert.AnError
	sm := NewSessionManager(failingUpdateStore{MemoryStore: session.NewMemoryStore(), err: boom})

	sess := session.New("s1", "token-1", time.Now().Add(time.Hour))
	err := sm.RotateToken(ctx, sess)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "token-1", sess.Token)
}
