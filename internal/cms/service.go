package cms

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/newsdesk/api"
	"github.com/dmitrymomot/newsdesk/pkg/cache"
	"github.com/dmitrymomot/newsdesk/pkg/id"
	"github.com/dmitrymomot/newsdesk/pkg/markdown"
	"github.com/dmitrymomot/newsdesk/pkg/sanitizer"
	"github.com/dmitrymomot/newsdesk/pkg/slug"
)

const (
	postCacheTTL    = 5 * time.Minute
	slugMaxLength   = 80
	slugAttempts    = 3
	excerptLength   = 280
	maxArticleTags  = 10
	cacheKeyPostFmt = "post:"
)

// Service holds the newsroom's rules. It knows nothing about HTTP.
type Service struct {
	posts     PostStore
	search    SearchIndex
	scheduler Scheduler
	cache     cache.Cache[api.Post]
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds the service from d. Missing Cache and Logger fall back
// to an in-process cache and a discarding logger.
func NewService(d Deps) *Service {
	s := &Service{
		posts:     d.Posts,
		search:    d.Search,
		scheduler: d.Scheduler,
		cache:     d.Cache,
		logger:    d.Logger,
		now:       d.Now,
	}
	if s.cache == nil {
		s.cache = cache.NewMemory[api.Post](cache.WithMaxEntries(1000), cache.WithCleanupInterval(0))
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreateGallery stores a draft gallery by author.
func (s *Service) CreateGallery(ctx context.Context, author *User, in api.CreateGalleryInput) (*Post, error) {
	now := s.now().UTC()
	p := &Post{
		ID:       id.New(),
		Kind:     api.KindGallery,
		Status:   api.StatusDraft,
		Title:    in.Title,
		Excerpt:  in.Excerpt,
		BodyText: strings.Join([]string{in.Excerpt, in.MainImageCaption, in.Credits}, " "),
		AuthorID: author.ID,
		Gallery: &Gallery{
			Type:             in.Type,
			Credits:          in.Credits,
			Link:             in.Link,
			MainImageUUID:    in.MainImageUUID,
			MainImageCaption: in.MainImageCaption,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateArticle renders the Markdown body. Frontmatter tags are merged with
// the given ones; the excerpt falls back to the frontmatter summary, then to
// the start of the text.
func (s *Service) CreateArticle(ctx context.Context, author *User, in api.CreateArticleInput) (*Post, error) {
	doc, err := markdown.Render([]byte(in.Body))
	if err != nil {
		return nil, err
	}

	excerpt := ""
	switch {
	case in.Excerpt != nil && *in.Excerpt != "":
		excerpt = *in.Excerpt
	case doc.Meta.Summary != "":
		excerpt = sanitizer.CollapseSpaces(sanitizer.StripHTML(doc.Meta.Summary))
	default:
		excerpt = markdown.Excerpt(doc.Text, excerptLength)
	}

	now := s.now().UTC()
	p := &Post{
		ID:        id.New(),
		Kind:      api.KindArticle,
		Status:    api.StatusDraft,
		Title:     in.Title,
		Excerpt:   excerpt,
		Body:      in.Body,
		BodyHTML:  doc.HTML,
		BodyText:  doc.Text,
		Tags:      mergeTags(in.Tags, doc.Meta.Tags),
		AuthorID:  author.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// insert stores p under a slug derived from its title, adding a random
// suffix when the plain slug is taken.
func (s *Service) insert(ctx context.Context, p *Post) error {
	base := slug.Make(p.Title, slug.MaxLength(slugMaxLength))
	if base == "" {
		base = p.Kind
	}
	p.Slug = base
	for attempt := 1; ; attempt++ {
		err := s.posts.CreatePost(ctx, p)
		if !errors.Is(err, ErrSlugTaken) || attempt == slugAttempts {
			return err
		}
		p.Slug = slug.Make(base, slug.MaxLength(slugMaxLength), slug.WithSuffix(6))
	}
}

// Published returns a published post by slug through the post cache.
func (s *Service) Published(ctx context.Context, postSlug string) (api.Post, error) {
	return cache.GetOrSet(ctx, s.cache, cacheKeyPostFmt+postSlug, func(ctx context.Context) (api.Post, time.Duration, error) {
		p, err := s.posts.PostBySlug(ctx, postSlug)
		if err != nil {
			return api.Post{}, 0, err
		}
		if !p.Published() {
			return api.Post{}, 0, ErrPostNotFound
		}
		return p.API(), postCacheTTL, nil
	})
}

// List returns a page of published posts without bodies.
func (s *Service) List(ctx context.Context, q api.ListPostsQuery) (api.PostPage, error) {
	f := ListFilter{Offset: (q.Page - 1) * q.Limit, Limit: q.Limit}
	if q.Kind != nil {
		f.Kind = *q.Kind
	}
	posts, total, err := s.posts.ListPublished(ctx, f)
	if err != nil {
		return api.PostPage{}, err
	}

	page := api.PostPage{
		Items:   make([]api.Post, 0, len(posts)),
		Page:    q.Page,
		Limit:   q.Limit,
		Total:   total,
		HasMore: f.Offset+len(posts) < total,
	}
	for _, p := range posts {
		item := p.API()
		item.BodyHTML = ""
		page.Items = append(page.Items, item)
	}
	return page, nil
}

// Schedule marks a post for publication at at and queues the task that
// publishes it. Rescheduling replaces the earlier time.
func (s *Service) Schedule(ctx context.Context, postID string, at time.Time) (*Post, error) {
	p, err := s.posts.PostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.Published() {
		return nil, ErrAlreadyPublished
	}
	now := s.now().UTC()
	if !at.After(now) {
		return nil, ErrPublishInPast
	}

	at = at.UTC()
	p.Status = api.StatusScheduled
	p.PublishAt = &at
	p.UpdatedAt = now
	if err := s.scheduler.SchedulePublish(ctx, p); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "post scheduled", slog.String("post_id", p.ID), slog.Time("publish_at", at))
	return p, nil
}

// Publish makes a post visible now. Publishing a published post is a no-op.
func (s *Service) Publish(ctx context.Context, postID string) (*Post, error) {
	p, err := s.posts.PostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.Published() {
		return p, nil
	}
	if err := s.publish(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PublishScheduled is run by the publish_post task. Posts that were deleted,
// published by hand or rescheduled to a later time are left alone.
func (s *Service) PublishScheduled(ctx context.Context, postID string) error {
	p, err := s.posts.PostByID(ctx, postID)
	if errors.Is(err, ErrPostNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.Status != api.StatusScheduled {
		return nil
	}
	if p.PublishAt != nil && p.PublishAt.After(s.now()) {
		return nil
	}
	return s.publish(ctx, p)
}

func (s *Service) publish(ctx context.Context, p *Post) error {
	now := s.now().UTC()
	p.Status = api.StatusPublished
	p.PublishedAt = &now
	p.UpdatedAt = now
	if err := s.posts.UpdatePost(ctx, p); err != nil {
		return err
	}

	s.invalidate(ctx, p)
	// The periodic index sync retries posts that fail here.
	if err := s.search.Index(ctx, p); err != nil {
		s.logger.WarnContext(ctx, "search index update failed", slog.String("post_id", p.ID), slog.Any("error", err))
	}
	s.logger.InfoContext(ctx, "post published", slog.String("post_id", p.ID), slog.String("slug", p.Slug))
	return nil
}

// Delete removes a post from the store, the cache and the index.
func (s *Service) Delete(ctx context.Context, postID string) error {
	p, err := s.posts.PostByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, p.ID); err != nil {
		return err
	}

	s.invalidate(ctx, p)
	if err := s.search.Remove(ctx, p.ID); err != nil {
		s.logger.WarnContext(ctx, "search index removal failed", slog.String("post_id", p.ID), slog.Any("error", err))
	}
	s.logger.InfoContext(ctx, "post deleted", slog.String("post_id", p.ID))
	return nil
}

// Search queries the index for published posts.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	return s.search.Search(ctx, query, limit)
}

func (s *Service) invalidate(ctx context.Context, p *Post) {
	if err := s.cache.Delete(ctx, cacheKeyPostFmt+p.Slug); err != nil {
		s.logger.WarnContext(ctx, "post cache invalidation failed", slog.String("slug", p.Slug), slog.Any("error", err))
	}
}

// mergeTags lowercases, trims and de-duplicates tags, keeping first-seen
// order and at most maxArticleTags.
func mergeTags(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		for _, t := range list {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" || slices.Contains(out, t) {
				continue
			}
			out = append(out, t)
		}
	}
	if len(out) > maxArticleTags {
		out = out[:maxArticleTags]
	}
	return out
}
