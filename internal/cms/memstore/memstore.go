// Package memstore keeps newsroom data in memory. It backs tests and
// single-process demos; nothing survives a restart.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/newsdesk/internal/cms"
)

// Store implements cms.PostStore, cms.UserStore and cms.ImageStore.
type Store struct {
	mu     sync.RWMutex
	posts  map[string]*cms.Post
	users  map[string]*cms.User
	tokens map[string]string // token hash -> user ID
	images map[string]*cms.Image
}

// New returns an empty store.
func New() *Store {
	return &Store{
		posts:  make(map[string]*cms.Post),
		users:  make(map[string]*cms.User),
		tokens: make(map[string]string),
		images: make(map[string]*cms.Image),
	}
}

// AddUser stores u and returns it.
func (s *Store) AddUser(u *cms.User) *cms.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
	return u
}

// AddToken lets token authenticate userID.
func (s *Store) AddToken(userID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[cms.HashToken(token)] = userID
}

// UserByID implements cms.UserStore.
func (s *Store) UserByID(_ context.Context, id string) (*cms.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, cms.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// UserByEmail implements cms.UserStore.
func (s *Store) UserByEmail(_ context.Context, email string) (*cms.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, cms.ErrUserNotFound
}

// UserByTokenHash implements cms.UserStore.
func (s *Store) UserByTokenHash(ctx context.Context, hash string) (*cms.User, error) {
	s.mu.RLock()
	userID, ok := s.tokens[hash]
	s.mu.RUnlock()
	if !ok {
		return nil, cms.ErrUserNotFound
	}
	return s.UserByID(ctx, userID)
}

// CreatePost implements cms.PostStore.
func (s *Store) CreatePost(_ context.Context, p *cms.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.posts {
		if existing.Slug == p.Slug {
			return cms.ErrSlugTaken
		}
	}
	s.posts[p.ID] = clonePost(p)
	return nil
}

// UpdatePost implements cms.PostStore.
func (s *Store) UpdatePost(_ context.Context, p *cms.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[p.ID]; !ok {
		return cms.ErrPostNotFound
	}
	s.posts[p.ID] = clonePost(p)
	return nil
}

// DeletePost implements cms.PostStore.
func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return cms.ErrPostNotFound
	}
	delete(s.posts, id)
	return nil
}

// PostByID implements cms.PostStore.
func (s *Store) PostByID(_ context.Context, id string) (*cms.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, cms.ErrPostNotFound
	}
	return clonePost(p), nil
}

// PostBySlug implements cms.PostStore.
func (s *Store) PostBySlug(_ context.Context, slug string) (*cms.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.Slug == slug {
			return clonePost(p), nil
		}
	}
	return nil, cms.ErrPostNotFound
}

// ListPublished implements cms.PostStore.
func (s *Store) ListPublished(_ context.Context, f cms.ListFilter) ([]*cms.Post, int, error) {
	s.mu.RLock()
	var matched []*cms.Post
	for _, p := range s.posts {
		if p.Published() && (f.Kind == "" || p.Kind == f.Kind) {
			matched = append(matched, clonePost(p))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *cms.Post) int {
		if c := publishedAt(b).Compare(publishedAt(a)); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	total := len(matched)
	start := min(max(f.Offset, 0), total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return matched[start:end], total, nil
}

// UpdatedSince implements cms.PostStore.
func (s *Store) UpdatedSince(_ context.Context, t time.Time) ([]*cms.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*cms.Post
	for _, p := range s.posts {
		if p.UpdatedAt.After(t) {
			out = append(out, clonePost(p))
		}
	}
	slices.SortFunc(out, func(a, b *cms.Post) int { return a.UpdatedAt.Compare(b.UpdatedAt) })
	return out, nil
}

// CreateImage implements cms.ImageStore.
func (s *Store) CreateImage(_ context.Context, img *cms.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *img
	s.images[img.ID] = &cp
	return nil
}

// Images returns every stored image.
func (s *Store) Images() []*cms.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*cms.Image, 0, len(s.images))
	for _, img := range s.images {
		cp := *img
		out = append(out, &cp)
	}
	return out
}

// Posts returns every stored post regardless of status.
func (s *Store) Posts() []*cms.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*cms.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, clonePost(p))
	}
	return out
}

func publishedAt(p *cms.Post) time.Time {
	if p.PublishedAt == nil {
		return time.Time{}
	}
	return *p.PublishedAt
}

func clonePost(p *cms.Post) *cms.Post {
	cp := *p
	cp.Tags = slices.Clone(p.Tags)
	if p.Gallery != nil {
		g := *p.Gallery
		cp.Gallery = &g
	}
	if p.PublishAt != nil {
		t := *p.PublishAt
		cp.PublishAt = &t
	}
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		cp.PublishedAt = &t
	}
	return &cp
}
