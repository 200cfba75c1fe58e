package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/pkg/session"
)

func TestSessionFlags(t *testing.T) {
	t.Parallel()

	sess := session.New("id", "token", time.Now().Add(time.Hour))
	assert.True(t, sess.IsNew())
	assert.True(t, sess.IsDirty())
	assert.False(t, sess.IsAuthenticated())
	assert.False(t, sess.IsExpired())

	sess.ClearDirty()
	sess.DeleteValue("missing")
	assert.False(t, sess.IsDirty())

	sess.SetValue("theme", "dark")
	assert.True(t, sess.IsDirty())

	uid := "user-1"
	sess.UserID = &uid
	assert.True(t, sess.IsAuthenticated())
}

func TestValue(t *testing.T) {
	t.Parallel()

	sess := session.New("id", "token", time.Now().Add(time.Hour))
	sess.SetValue("count", 3)

	n, err := session.Value[int](sess, "count")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = session.Value[string](sess, "count")
	require.Error(t, err)

	_, err = session.Value[int](sess, "missing")
	require.ErrorIs(t, err, session.ErrNotFound)

	assert.Equal(t, "light", session.ValueOr(sess, "theme", "light"))
	assert.Equal(t, 0, session.ValueOr[int](nil, "count", 0))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore()

	sess := session.New("s1", "tok-1", time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	got.SetValue("k", "v")
	stored, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	_, ok := stored.GetValue("k")
	assert.False(t, ok)

	uid := "u1"
	got.UserID = &uid
	got.Token = "tok-2"
	require.NoError(t, store.Update(ctx, got))

	_, err = store.Get(ctx, "tok-1")
	require.ErrorIs(t, err, session.ErrNotFound)

	rotated, err := store.Get(ctx, "tok-2")
	require.NoError(t, err)
	assert.Equal(t, "v", rotated.Values["k"])

	require.NoError(t, store.DeleteByUserID(ctx, "u1"))
	_, err = store.Get(ctx, "tok-2")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemoryStoreExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore()

	require.NoError(t, store.Create(ctx, session.New("s1", "tok", time.Now().Add(-time.Minute))))

	_, err := store.Get(ctx, "tok")
	require.ErrorIs(t, err, session.ErrExpired)
}

func TestMemoryStoreUpdateUnknown(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	err := store.Update(context.Background(), session.New("nope", "tok", time.Now().Add(time.Hour)))
	require.ErrorIs(t, err, session.ErrNotFound)
}
