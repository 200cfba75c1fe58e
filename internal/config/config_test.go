package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/internal/config"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NEWSDESK_DB__URL", "postgres://localhost/newsdesk")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "newsdesk", cfg.Telemetry.ServiceName)
	assert.Equal(t, "none", cfg.Telemetry.Exporter)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 7*24*3600, cfg.Session.MaxAge)
	assert.True(t, cfg.Session.Secure)
	assert.False(t, cfg.Storage.Enabled())
	assert.False(t, cfg.Google.Enabled())
	assert.Equal(t, 10, cfg.Jobs.Workers)
	assert.Equal(t, 2, cfg.Jobs.EditorialWorkers)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newsdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  request_timeout: 5s
db:
  url: postgres://file/newsdesk
storage:
  bucket: media
  region: eu-central-1
session:
  secret: `+secret+`
`), 0o600))

	t.Setenv("NEWSDESK_DB__URL", "postgres://env/newsdesk")
	t.Setenv("NEWSDESK_STORAGE__ACCESS_KEY", "AKIA")
	t.Setenv("NEWSDESK_GOOGLE__CLIENT_ID", "id")
	t.Setenv("NEWSDESK_GOOGLE__CLIENT_SECRET", "shh")
	t.Setenv("NEWSDESK_JOBS__EDITORIAL_WORKERS", "4")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "postgres://env/newsdesk", cfg.DB.URL)
	assert.Equal(t, "media", cfg.Storage.Bucket)
	assert.Equal(t, "AKIA", cfg.Storage.AccessKey)
	assert.True(t, cfg.Storage.Enabled())
	assert.True(t, cfg.Google.Enabled())
	assert.Equal(t, 4, cfg.Jobs.EditorialWorkers)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	t.Setenv("NEWSDESK_DB__URL", "postgres://localhost/newsdesk")

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("NEWSDESK_DB__URL", "")
	t.Setenv("NEWSDESK_SESSION__SECRET", "short")

	_, err := config.Load("")
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.Contains(t, err.Error(), "db.url is required")
	assert.Contains(t, err.Error(), "session.secret")
}
