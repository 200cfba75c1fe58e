package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		s, err := New(Config{Bucket: "b", AccessKey: "k", SecretKey: "s"})
		require.NoError(t, err)
		require.NotNil(t, s.client)
		require.Equal(t, DefaultRegion, s.cfg.Region)
		require.Equal(t, ACLPrivate, s.cfg.DefaultACL)
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Bucket: "b"})
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("unknown acl", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Bucket: "b", AccessKey: "k", SecretKey: "s", DefaultACL: "world-writable"})
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestS3URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"aws", Config{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com/images/a.png"},
		{"public url", Config{Bucket: "b", PublicURL: "https://cdn.test/"}, "https://cdn.test/images/a.png"},
		{"path style", Config{Bucket: "b", Endpoint: "http://localhost:9000", PathStyle: true}, "http://localhost:9000/b/images/a.png"},
		{"virtual host endpoint", Config{Bucket: "b", Endpoint: "https://b.minio.test/"}, "https://b.minio.test/images/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &S3{cfg: tt.cfg}
			require.Equal(t, tt.want, s.URL("images/a.png"))
		})
	}
}

func TestSanitizePathSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"images", "images"},
		{"/images/", "images"},
		{"my folder", "my_folder"},
		{"../../etc", "__etc"},
		{"a/b", "a_b"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, sanitizePathSegment(tt.in), tt.in)
	}
}

func TestBuildKey(t *testing.T) {
	t.Parallel()

	require.Regexp(t, `^images/[0-9a-f-]{36}\.png$`, buildKey("images", "image/png"))
	require.Regexp(t, `^[0-9a-f-]{36}\.bin$`, buildKey("", "application/x-unknown"))
}
