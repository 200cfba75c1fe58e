// Package pgstore keeps newsroom data in PostgreSQL through pgx. The schema
// lives in internal/cms/migrations.
package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/newsdesk/internal/cms"
	"github.com/dmitrymomot/newsdesk/pkg/db"
)

const uniqueViolation = "23505"

// Store implements cms.PostStore, cms.UserStore and cms.ImageStore.
type Store struct {
	db db.Querier
}

// New works on a pool or inside a transaction.
func New(q db.Querier) *Store {
	return &Store{db: q}
}

const postColumns = `id::text, kind, status, slug, title, excerpt, body, body_html, body_text,
	tags, author_id::text, gallery_type, gallery_credits, gallery_link,
	main_image_uuid, main_image_caption, publish_at, published_at, created_at, updated_at`

// CreatePost implements cms.PostStore.
func (s *Store) CreatePost(ctx context.Context, p *cms.Post) error {
	g := galleryColumns(p.Gallery)
	_, err := s.db.Exec(ctx, `
		INSERT INTO posts (id, kind, status, slug, title, excerpt, body, body_html, body_text,
			tags, author_id, gallery_type, gallery_credits, gallery_link,
			main_image_uuid, main_image_caption, publish_at, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		p.ID, p.Kind, p.Status, p.Slug, p.Title, p.Excerpt, p.Body, p.BodyHTML, p.BodyText,
		tags(p.Tags), p.AuthorID, g[0], g[1], g[2], g[3], g[4], p.PublishAt, p.PublishedAt, p.CreatedAt, p.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "posts_slug_key" {
		return cms.ErrSlugTaken
	}
	return err
}

// UpdatePost implements cms.PostStore.
func (s *Store) UpdatePost(ctx context.Context, p *cms.Post) error {
	g := galleryColumns(p.Gallery)
	tag, err := s.db.Exec(ctx, `
		UPDATE posts SET status = $2, slug = $3, title = $4, excerpt = $5, body = $6, body_html = $7,
			body_text = $8, tags = $9, gallery_type = $10, gallery_credits = $11, gallery_link = $12,
			main_image_uuid = $13, main_image_caption = $14, publish_at = $15, published_at = $16,
			updated_at = $17
		WHERE id = $1`,
		p.ID, p.Status, p.Slug, p.Title, p.Excerpt, p.Body, p.BodyHTML, p.BodyText, tags(p.Tags),
		g[0], g[1], g[2], g[3], g[4], p.PublishAt, p.PublishedAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return cms.ErrPostNotFound
	}
	return nil
}

// DeletePost implements cms.PostStore.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return cms.ErrPostNotFound
	}
	return nil
}

// PostByID implements cms.PostStore.
func (s *Store) PostByID(ctx context.Context, id string) (*cms.Post, error) {
	return s.onePost(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

// PostBySlug implements cms.PostStore.
func (s *Store) PostBySlug(ctx context.Context, slug string) (*cms.Post, error) {
	return s.onePost(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
}

// ListPublished returns a page of published posts and their total count.
func (s *Store) ListPublished(ctx context.Context, f cms.ListFilter) ([]*cms.Post, int, error) {
	var total int
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM posts
		WHERE status = 'published' AND ($1 = '' OR kind = $1)`, f.Kind,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE status = 'published' AND ($1 = '' OR kind = $1)
		ORDER BY published_at DESC, id DESC
		OFFSET $2 LIMIT $3`, f.Kind, f.Offset, f.Limit,
	)
	if err != nil {
		return nil, 0, err
	}
	posts, err := pgx.CollectRows(rows, scanPost)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// UpdatedSince returns posts changed after t.
func (s *Store) UpdatedSince(ctx context.Context, t time.Time) ([]*cms.Post, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+postColumns+` FROM posts WHERE updated_at > $1 ORDER BY updated_at`, t)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanPost)
}

func (s *Store) onePost(ctx context.Context, query string, arg any) (*cms.Post, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPost)
	if db.IsNotFound(err) {
		return nil, cms.ErrPostNotFound
	}
	return p, err
}

func scanPost(row pgx.CollectableRow) (*cms.Post, error) {
	var (
		p                                        cms.Post
		gType, gCredits, gLink, gImage, gCaption *string
	)
	err := row.Scan(
		&p.ID, &p.Kind, &p.Status, &p.Slug, &p.Title, &p.Excerpt, &p.Body, &p.BodyHTML, &p.BodyText,
		&p.Tags, &p.AuthorID, &gType, &gCredits, &gLink, &gImage, &gCaption,
		&p.PublishAt, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if gType != nil {
		p.Gallery = &cms.Gallery{
			Type:             *gType,
			Credits:          deref(gCredits),
			Link:             deref(gLink),
			MainImageUUID:    deref(gImage),
			MainImageCaption: deref(gCaption),
		}
	}
	return &p, nil
}

// galleryColumns returns type, credits, link, main image and caption, all
// NULL for articles.
func galleryColumns(g *cms.Gallery) [5]*string {
	if g == nil {
		return [5]*string{}
	}
	return [5]*string{&g.Type, &g.Credits, &g.Link, &g.MainImageUUID, &g.MainImageCaption}
}

func tags(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
