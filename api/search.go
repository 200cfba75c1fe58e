package api

import "time"

// SearchQuery is the query of GET /search.
type SearchQuery struct {
	Q     string `query:"q" validate:"required;min:2;max:200" sanitize:"trim,collapse"`
	Limit int    `query:"limit" default:"10" validate:"min:1;max:50"`
}

// SearchResults lists matching published posts, best first.
type SearchResults struct {
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}

// SearchHit is one matching post.
type SearchHit struct {
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Snippet     string     `json:"snippet"`
	Rank        float64    `json:"rank"`
}
