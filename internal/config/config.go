// Package config loads server settings from an optional YAML file and
// NEWSDESK_* environment variables. The environment wins; nested keys use a
// double underscore, so NEWSDESK_DB__URL sets db.url.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dmitrymomot/newsdesk/pkg/cookie"
	"github.com/dmitrymomot/newsdesk/pkg/db"
	"github.com/dmitrymomot/newsdesk/pkg/logger"
	"github.com/dmitrymomot/newsdesk/pkg/oauth"
	"github.com/dmitrymomot/newsdesk/pkg/redis"
	"github.com/dmitrymomot/newsdesk/pkg/storage"
	"github.com/dmitrymomot/newsdesk/pkg/telemetry"
)

const EnvPrefix = "NEWSDESK_"

var (
	ErrLoad    = errors.New("config: failed to load")
	ErrInvalid = errors.New("config: invalid")
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig       `koanf:"server"`
	Log       logger.Config      `koanf:"log"`
	DB        db.Config          `koanf:"db"`
	Redis     redis.Config       `koanf:"redis"`
	Storage   storage.Config     `koanf:"storage"`
	Google    oauth.GoogleConfig `koanf:"google"`
	Session   SessionConfig      `koanf:"session"`
	Telemetry telemetry.Config   `koanf:"telemetry"`
	Jobs      JobsConfig         `koanf:"jobs"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ServiceName     string        `koanf:"service_name"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// SessionConfig covers the session cookie and the secret that signs the
// OAuth state cookie.
type SessionConfig struct {
	Secret string `koanf:"secret"`
	Domain string `koanf:"domain"`
	MaxAge int    `koanf:"max_age"` // seconds
	Secure bool   `koanf:"secure"`
}

// JobsConfig sizes the worker pools.
type JobsConfig struct {
	Workers          int `koanf:"workers"`
	EditorialWorkers int `koanf:"editorial_workers"`
}

var defaults = map[string]any{
	"server.addr":             ":8080",
	"server.service_name":     "newsdesk",
	"server.request_timeout":  "30s",
	"server.shutdown_timeout": "15s",
	"log.level":               "info",
	"log.format":              "json",
	"session.max_age":         7 * 24 * 3600,
	"session.secure":          true,
	"telemetry.exporter":      "none",
	"telemetry.sample_ratio":  1.0,
	"jobs.workers":            10,
	"jobs.editorial_workers":  2,
}

// Load reads path (skipped when empty or missing), then the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	for key, v := range defaults {
		if err := k.Set(key, v); err != nil {
			return nil, errors.Join(ErrLoad, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Join(ErrLoad, fmt.Errorf("%s: %w", path, err))
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Join(ErrLoad, err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Join(ErrLoad, err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.Server.ServiceName
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps NEWSDESK_STORAGE__ACCESS_KEY to storage.access_key.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DB.URL == "" {
		errs = append(errs, errors.New("db.url is required"))
	}
	if c.Session.Secret != "" {
		if err := cookie.CheckSecret(c.Session.Secret); err != nil {
			errs = append(errs, fmt.Errorf("session.secret: %w", err))
		}
	}
	if c.Google.Enabled() && c.Session.Secret == "" {
		errs = append(errs, errors.New("session.secret is required for google sign-in"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalid}, errs...)...)
	}
	return nil
}
