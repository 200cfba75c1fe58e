// Package api declares the request and response payloads of the site's
// endpoints. The server validates them and the generated client sends them,
// so both sides share one definition.
package api

import "time"

// Post kinds.
const (
	KindArticle = "article"
	KindGallery = "gallery"
)

// Post statuses.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusPublished = "published"
)

// Gallery types.
const (
	GalleryPhoto        = "photo"
	GalleryVideo        = "video"
	GalleryIllustration = "illustration"
)

// Post is a post as readers and staff see it. BodyHTML is omitted in lists.
type Post struct {
	PublishAt   *time.Time `json:"publishAt,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Gallery     *Gallery   `json:"gallery,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	BodyHTML    string     `json:"bodyHtml,omitempty"`
	AuthorID    string     `json:"authorId"`
	Tags        []string   `json:"tags,omitempty"`
}

// Gallery holds the fields of a gallery post.
type Gallery struct {
	Type             string `json:"type"`
	Credits          string `json:"credits"`
	Link             string `json:"link"`
	MainImageUUID    string `json:"mainImageUuid"`
	MainImageCaption string `json:"mainImageCaption"`
}

// PostPage is one page of published posts.
type PostPage struct {
	Items   []Post `json:"items"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	Total   int    `json:"total"`
	HasMore bool   `json:"hasMore"`
}

// ListPostsQuery pages through published posts, newest first.
type ListPostsQuery struct {
	Kind  *string `query:"kind" validate:"oneof:article|gallery"`
	Page  int     `query:"page" default:"1" validate:"min:1;max:10000"`
	Limit int     `query:"limit" default:"20" validate:"min:1;max:100"`
}

// CreateGalleryInput creates a draft gallery post.
type CreateGalleryInput struct {
	Credits          string `json:"credits" validate:"required;max:200" sanitize:"trim"`
	Link             string `json:"link" validate:"required;max:2048" sanitize:"trim"`
	Title            string `json:"title" validate:"required;max:200" sanitize:"trim,collapse"`
	MainImageCaption string `json:"mainImageCaption" validate:"required;max:500" sanitize:"strip_html,trim"`
	Type             string `json:"type" validate:"required;oneof:photo|video|illustration" sanitize:"trim,lower"`
	MainImageUUID    string `json:"mainImageUuid" validate:"required;max:64" sanitize:"trim,lower"`
	Excerpt          string `json:"excerpt" validate:"required;max:500" sanitize:"strip_html,trim"`
}

// CreateArticleInput creates a draft article. Body is Markdown and may start
// with a YAML block carrying summary and tags.
type CreateArticleInput struct {
	Excerpt *string  `json:"excerpt" validate:"max:500" sanitize:"strip_html,trim"`
	Title   string   `json:"title" validate:"required;max:200" sanitize:"trim,collapse"`
	Body    string   `json:"body" validate:"required;max:100000"`
	Tags    []string `json:"tags" validate:"max:10" sanitize:"trim,lower"`
}

// SchedulePostInput sets when a post goes live. PublishAt must be in the future.
type SchedulePostInput struct {
	PublishAt time.Time `json:"publishAt" validate:"required"`
}

// Deleted acknowledges a removal.
type Deleted struct {
	ID string `json:"id"`
}
