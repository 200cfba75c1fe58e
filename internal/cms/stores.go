package cms

import (
	"context"
	"time"
)

// PostStore persists posts. Lookups of missing posts return ErrPostNotFound;
// CreatePost returns ErrSlugTaken when the slug is in use.
type PostStore interface {
	CreatePost(ctx context.Context, p *Post) error
	UpdatePost(ctx context.Context, p *Post) error
	DeletePost(ctx context.Context, id string) error
	PostByID(ctx context.Context, id string) (*Post, error)
	PostBySlug(ctx context.Context, slug string) (*Post, error)

	// ListPublished returns one page of published posts, newest first, and
	// the total number of matches.
	ListPublished(ctx context.Context, f ListFilter) ([]*Post, int, error)

	// UpdatedSince returns every post, in any status, changed after t.
	UpdatedSince(ctx context.Context, t time.Time) ([]*Post, error)
}

// UserStore looks up staff. Missing users return ErrUserNotFound.
type UserStore interface {
	UserByID(ctx context.Context, id string) (*User, error)
	UserByEmail(ctx context.Context, email string) (*User, error)

	// UserByTokenHash resolves an API token by its SHA-256 hex digest.
	UserByTokenHash(ctx context.Context, hash string) (*User, error)
}

// ImageStore records uploaded images.
type ImageStore interface {
	CreateImage(ctx context.Context, img *Image) error
}

// SearchIndex is the full-text index of published posts.
type SearchIndex interface {
	Index(ctx context.Context, p *Post) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
}

// Scheduler persists a post already marked scheduled and arranges for the
// publish_post task to run at its PublishAt. Implementations do both or
// neither.
type Scheduler interface {
	SchedulePublish(ctx context.Context, p *Post) error
}
