package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/newsdesk/internal/cms"
)

// Search is a substring index. A hit in the title ranks above one in the
// excerpt, which ranks above one in the body.
type Search struct {
	mu   sync.RWMutex
	docs map[string]*cms.Post
}

// NewSearch returns an empty index.
func NewSearch() *Search {
	return &Search{docs: make(map[string]*cms.Post)}
}

// Index implements cms.SearchIndex.
func (s *Search) Index(_ context.Context, p *cms.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[p.ID] = clonePost(p)
	return nil
}

// Remove implements cms.SearchIndex.
func (s *Search) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

// Len reports how many posts are indexed.
func (s *Search) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Search implements cms.SearchIndex.
func (s *Search) Search(_ context.Context, query string, limit int) ([]cms.SearchHit, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	s.mu.RLock()
	var hits []cms.SearchHit
	for _, p := range s.docs {
		var rank float64
		switch {
		case strings.Contains(strings.ToLower(p.Title), q):
			rank = 1
		case strings.Contains(strings.ToLower(p.Excerpt), q):
			rank = 0.4
		case strings.Contains(strings.ToLower(p.BodyText), q):
			rank = 0.2
		default:
			continue
		}
		hits = append(hits, cms.SearchHit{
			ID:          p.ID,
			Kind:        p.Kind,
			Slug:        p.Slug,
			Title:       p.Title,
			Snippet:     p.Excerpt,
			Rank:        rank,
			PublishedAt: p.PublishedAt,
		})
	}
	s.mu.RUnlock()

	slices.SortFunc(hits, func(a, b cms.SearchHit) int {
		if c := cmp.Compare(b.Rank, a.Rank); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
