package pgstore

import (
	"context"

	"github.com/dmitrymomot/newsdesk/internal/cms"
)

// CreateImage implements cms.ImageStore.
func (s *Store) CreateImage(ctx context.Context, img *cms.Image) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO images (id, key, url, content_type, size, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		img.ID, img.Key, img.URL, img.ContentType, img.Size, img.UploadedBy, img.CreatedAt,
	)
	return err
}
