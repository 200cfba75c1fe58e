package storage_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/pkg/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func fileHeader(t *testing.T, field, filename string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	require.Len(t, form.File[field], 1)
	return form.File[field][0]
}

func TestMemoryPut(t *testing.T) {
	t.Parallel()

	t.Run("sniffs content type and generates key", func(t *testing.T) {
		t.Parallel()
		m := storage.NewMemory("https://cdn.test/")

		info, err := m.Put(context.Background(), bytes.NewReader(pngHeader), int64(len(pngHeader)), storage.WithPrefix("images"))
		require.NoError(t, err)
		assert.Equal(t, "image/png", info.ContentType)
		assert.True(t, strings.HasPrefix(info.Key, "images/"))
		assert.True(t, strings.HasSuffix(info.Key, ".png"))
		assert.Equal(t, "https://cdn.test/"+info.Key, info.URL)
		assert.Equal(t, storage.ACLPublicRead, info.ACL)

		data, ct, err := m.Get(info.Key)
		require.NoError(t, err)
		assert.Equal(t, pngHeader, data)
		assert.Equal(t, "image/png", ct)
	})

	t.Run("explicit key and content type", func(t *testing.T) {
		t.Parallel()
		m := storage.NewMemory("https://cdn.test")

		info, err := m.Put(context.Background(), strings.NewReader("hello"), 5,
			storage.WithKey("notes/a.txt"), storage.WithContentType("text/plain; charset=utf-8"))
		require.NoError(t, err)
		assert.Equal(t, "notes/a.txt", info.Key)
		assert.Equal(t, "text/plain", info.ContentType)
	})

	t.Run("rejects disallowed type before storing", func(t *testing.T) {
		t.Parallel()
		m := storage.NewMemory("https://cdn.test")

		_, err := m.Put(context.Background(), strings.NewReader("plain text"), 10,
			storage.WithKey("x"), storage.WithValidation(storage.AllowedTypes("image/*")))
		var verr *storage.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, storage.CodeInvalidMIME, verr.Code)

		_, _, err = m.Get("x")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		m := storage.NewMemory("https://cdn.test")

		info, err := m.Put(context.Background(), strings.NewReader("x"), 1)
		require.NoError(t, err)
		require.NoError(t, m.Delete(context.Background(), info.Key))
		require.NoError(t, m.Delete(context.Background(), info.Key))
		_, _, err = m.Get(info.Key)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestPutFile(t *testing.T) {
	t.Parallel()

	rules := storage.WithValidation(storage.NotEmpty(), storage.MaxSize(64), storage.AllowedTypes("image/*"))

	t.Run("image", func(t *testing.T) {
		t.Parallel()
		m := storage.NewMemory("https://cdn.test")

		// The filename lies; magic bytes win.
		info, err := storage.PutFile(context.Background(), m, fileHeader(t, "file", "photo.txt", pngHeader), rules)
		require.NoError(t, err)
		assert.Equal(t, "image/png", info.ContentType)
		assert.True(t, strings.HasSuffix(info.Key, ".png"))
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()
		m := storage.NewMemory("https://cdn.test")
		big := append(append([]byte{}, pngHeader...), make([]byte, 100)...)

		_, err := storage.PutFile(context.Background(), m, fileHeader(t, "file", "big.png", big), rules)
		var verr *storage.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, storage.CodeFileTooLarge, verr.Code)
	})

	t.Run("nil header", func(t *testing.T) {
		t.Parallel()
		_, err := storage.PutFile(context.Background(), storage.NewMemory(""), nil)
		require.ErrorIs(t, err, storage.ErrEmptyFile)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		size     int64
		mimeType string
		rules    []storage.Rule
		code     string
	}{
		{"passes", 10, "image/jpeg", []storage.Rule{storage.NotEmpty(), storage.MaxSize(10), storage.AllowedTypes("image/*")}, ""},
		{"empty", 0, "image/jpeg", []storage.Rule{storage.NotEmpty()}, storage.CodeEmptyFile},
		{"exact type", 1, "application/pdf", []storage.Rule{storage.AllowedTypes("application/pdf")}, ""},
		{"wildcard miss", 1, "video/mp4", []storage.Rule{storage.AllowedTypes("image/*")}, storage.CodeInvalidMIME},
		{"first failure wins", 0, "video/mp4", []storage.Rule{storage.NotEmpty(), storage.AllowedTypes("image/*")}, storage.CodeEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := storage.Validate(tt.size, tt.mimeType, tt.rules...)
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			var verr *storage.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.code, verr.Code)
			assert.Equal(t, "file", verr.Field)
		})
	}
}

func TestExtFromMIME(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".jpg", storage.ExtFromMIME("image/jpeg"))
	assert.Equal(t, ".png", storage.ExtFromMIME("IMAGE/PNG"))
	assert.Equal(t, ".txt", storage.ExtFromMIME("text/plain; charset=utf-8"))
	assert.Empty(t, storage.ExtFromMIME("application/x-unknown"))
}
