package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/newsdesk/internal/cms"
	"github.com/dmitrymomot/newsdesk/pkg/db"
)

// Search is Postgres full-text search over the posts table. The weighted
// search_vector column is generated by the database; indexing only flags a
// row as searchable.
type Search struct {
	db db.Querier
}

// NewSearch returns the full-text index over the posts table.
func NewSearch(q db.Querier) *Search {
	return &Search{db: q}
}

// Index marks p as indexed. The tsvector column is kept by Postgres.
func (s *Search) Index(ctx context.Context, p *cms.Post) error {
	_, err := s.db.Exec(ctx, `UPDATE posts SET indexed_at = now() WHERE id = $1`, p.ID)
	return err
}

// Remove clears the indexed mark of a post.
func (s *Search) Remove(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `UPDATE posts SET indexed_at = NULL WHERE id = $1`, id)
	return err
}

// Search ranks indexed published posts against query.
func (s *Search) Search(ctx context.Context, query string, limit int) ([]cms.SearchHit, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id::text, kind, slug, title,
			ts_headline('simple', coalesce(nullif(body_text, ''), excerpt), q,
				'MaxWords=30, MinWords=10, StartSel=<mark>, StopSel=</mark>'),
			ts_rank(search_vector, q), published_at
		FROM posts, websearch_to_tsquery('simple', $1) q
		WHERE indexed_at IS NOT NULL AND status = 'published' AND search_vector @@ q
		ORDER BY 6 DESC, published_at DESC
		LIMIT $2`, query, limit,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (cms.SearchHit, error) {
		var (
			h    cms.SearchHit
			rank float32
		)
		err := row.Scan(&h.ID, &h.Kind, &h.Slug, &h.Title, &h.Snippet, &rank, &h.PublishedAt)
		h.Rank = float64(rank)
		return h, err
	})
}
