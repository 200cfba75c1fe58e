// Package cms is the newsroom: posts, galleries, images and the staff who
// write them. Storage, search and scheduling are interfaces; memstore and
// pgstore provide the implementations.
package cms

import (
	"errors"
	"slices"
	"time"

	"github.com/dmitrymomot/newsdesk/api"
)

// Staff roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleWriter = "writer"
)

var (
	ErrPostNotFound     = errors.New("cms: post not found")
	ErrUserNotFound     = errors.New("cms: user not found")
	ErrSlugTaken        = errors.New("cms: slug already taken")
	ErrAlreadyPublished = errors.New("cms: post already published")
	ErrPublishInPast    = errors.New("cms: publish time is not in the future")
	ErrUserDisabled     = errors.New("cms: user is disabled")
)

// User is a staff member. It is the authenticated principal of every
// non-public endpoint.
type User struct {
	CreatedAt time.Time
	ID        string
	Email     string
	Name      string
	Role      string
	Disabled  bool
}

// PrincipalID implements newsdesk.Principal.
func (u *User) PrincipalID() string { return u.ID }

// PrincipalRoles implements newsdesk.Principal.
func (u *User) PrincipalRoles() []string { return []string{u.Role} }

// API returns the wire form of u.
func (u *User) API() api.User {
	return api.User{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Post is an article or a gallery. Body holds the Markdown source of
// articles; BodyHTML and BodyText are derived from it on write.
type Post struct {
	PublishAt   *time.Time
	PublishedAt *time.Time
	Gallery     *Gallery
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ID          string
	Kind        string
	Status      string
	Slug        string
	Title       string
	Excerpt     string
	Body        string
	BodyHTML    string
	BodyText    string
	AuthorID    string
	Tags        []string
}

// Gallery holds the fields specific to gallery posts.
type Gallery struct {
	Type             string
	Credits          string
	Link             string
	MainImageUUID    string
	MainImageCaption string
}

// Published reports whether readers can see p.
func (p *Post) Published() bool { return p.Status == api.StatusPublished }

// API returns the wire form of p.
func (p *Post) API() api.Post {
	out := api.Post{
		ID:          p.ID,
		Kind:        p.Kind,
		Status:      p.Status,
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		BodyHTML:    p.BodyHTML,
		AuthorID:    p.AuthorID,
		Tags:        slices.Clone(p.Tags),
		PublishAt:   p.PublishAt,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if g := p.Gallery; g != nil {
		out.Gallery = &api.Gallery{
			Type:             g.Type,
			Credits:          g.Credits,
			Link:             g.Link,
			MainImageUUID:    g.MainImageUUID,
			MainImageCaption: g.MainImageCaption,
		}
	}
	return out
}

// Image is an uploaded file in object storage.
type Image struct {
	CreatedAt   time.Time
	ID          string
	Key         string
	URL         string
	ContentType string
	UploadedBy  string
	Size        int64
}

// API returns the wire form of i.
func (i *Image) API() api.Image {
	return api.Image{UUID: i.ID, URL: i.URL, ContentType: i.ContentType, Size: i.Size}
}

// ListFilter selects a page of published posts.
type ListFilter struct {
	Kind   string
	Offset int
	Limit  int
}

// SearchHit is one search result.
type SearchHit struct {
	PublishedAt *time.Time
	ID          string
	Kind        string
	Slug        string
	Title       string
	Snippet     string
	Rank        float64
}

// API returns the wire form of h.
func (h SearchHit) API() api.SearchHit {
	return api.SearchHit{
		ID:          h.ID,
		Kind:        h.Kind,
		Slug:        h.Slug,
		Title:       h.Title,
		Snippet:     h.Snippet,
		Rank:        h.Rank,
		PublishedAt: h.PublishedAt,
	}
}
