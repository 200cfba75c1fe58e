// Package storage stores uploaded files in S3-compatible object storage.
//
// Keys are generated as {prefix}/{uuid}{ext}, where the extension is derived
// from the content type sniffed from the file's magic bytes, never from the
// client-supplied filename.
//
//	store, err := storage.New(cfg.Storage)
//	if err != nil {
//		return err
//	}
//	info, err := storage.PutFile(ctx, store, fh,
//		storage.WithPrefix("images"),
//		storage.WithACL(storage.ACLPublicRead),
//		storage.WithValidation(storage.NotEmpty(), storage.MaxSize(10<<20), storage.AllowedTypes("image/*")),
//	)
//
// Memory implements the same interface for tests and local development.
package storage

import (
	"context"
	"io"
)

// Storage is the file storage surface used by the site.
type Storage interface {
	// Put uploads size bytes from r. The content type is sniffed unless
	// WithContentType is given.
	Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error)

	// Delete removes the object under key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL of key.
	URL(key string) string
}

// Config holds S3-compatible storage configuration.
type Config struct {
	Bucket    string `koanf:"bucket"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`

	// Endpoint is set for MinIO and other S3-compatible services.
	Endpoint string `koanf:"endpoint"`
	Region   string `koanf:"region"`

	// PublicURL is the CDN prefix used by URL. Falls back to the bucket URL.
	PublicURL  string `koanf:"public_url"`
	DefaultACL ACL    `koanf:"default_acl"`
	PathStyle  bool   `koanf:"path_style"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool { return c.Bucket != "" }

// FileInfo describes an uploaded file.
type FileInfo struct {
	Key         string
	URL         string
	ContentType string
	ACL         ACL
	Size        int64
}

// ACL is a canned access control level.
type ACL string

const (
	ACLPrivate    ACL = "private"
	ACLPublicRead ACL = "public-read"
)

const DefaultRegion = "us-east-1"

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.DefaultACL == "" {
		c.DefaultACL = ACLPrivate
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	switch c.DefaultACL {
	case ACLPrivate, ACLPublicRead:
	default:
		return ErrInvalidConfig
	}
	return nil
}
