package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := Open(ctx, Config{})
	require.ErrorIs(t, err, ErrEmptyConnectionURL)

	for _, url := range []string{
		"http://localhost:6379",
		"localhost:6379",
		"postgresql://localhost:6379",
		"redis://localhost:notaport",
		"redis://localhost:6379/notanumber",
	} {
		client, err := Open(ctx, Config{URL: url})
		require.ErrorIs(t, err, ErrFailedToParseURL, url)
		require.Nil(t, client)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	t.Parallel()

	opts, err := parse(Config{URL: "redis://localhost:6379/2", PoolSize: 25})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 25, opts.PoolSize)
	assert.Equal(t, 2, opts.MinIdleConns)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
}

func TestHealthcheckNilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	require.ErrorIs(t, err, ErrHealthcheckFailed)
}

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	c := &closer{err: errors.New("close error")}
	err := Shutdown(c)(context.Background())
	require.EqualError(t, err, "close error")
	assert.True(t, c.closed)
}

func TestWaitHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := wait(ctx, 10*time.Second)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
