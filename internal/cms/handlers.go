package cms

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/newsdesk"
	"github.com/dmitrymomot/newsdesk/api"
	"github.com/dmitrymomot/newsdesk/pkg/cookie"
	"github.com/dmitrymomot/newsdesk/pkg/id"
	"github.com/dmitrymomot/newsdesk/pkg/markdown"
	"github.com/dmitrymomot/newsdesk/pkg/oauth"
	"github.com/dmitrymomot/newsdesk/pkg/storage"
)

// Handlers serves the newsroom API.
type Handlers struct {
	svc     *Service
	proc    Procedures
	users   UserStore
	images  ImageStore
	files   storage.Storage
	oauth   oauth.Provider
	cookies *cookie.Manager
	logger  *slog.Logger
}

// NewHandlers builds the service and the procedures from d.
func NewHandlers(d Deps) *Handlers {
	h := &Handlers{
		svc:     NewService(d),
		proc:    NewProcedures(d.Users),
		users:   d.Users,
		images:  d.Images,
		files:   d.Files,
		oauth:   d.OAuth,
		cookies: d.Cookies,
		logger:  d.Logger,
	}
	if h.logger == nil {
		h.logger = slog.New(slog.DiscardHandler)
	}
	return h
}

// Service returns the service behind the handlers.
func (h *Handlers) Service() *Service { return h.svc }

// Routes mounts every endpoint under root.
func (h *Handlers) Routes(root *newsdesk.Node) {
	p := h.proc

	root.Subroute("/posts").Config(
		newsdesk.Finalize(newsdesk.WithQuery[api.ListPostsQuery](p.Public), http.MethodGet, "/", h.listPosts,
			newsdesk.Named("ListPosts"), newsdesk.Summary("Lists published posts, newest first.")),
		newsdesk.Finalize(p.Public, http.MethodGet, "/{slug}", h.getPost,
			newsdesk.Named("GetPost"), newsdesk.Summary("Returns a published post by slug.")),
		newsdesk.Finalize(newsdesk.WithBody[api.CreateGalleryInput](p.Editors), http.MethodPost, "/gallery", h.createGallery,
			newsdesk.Named("CreateGallery"), newsdesk.Summary("Creates a draft gallery.")),
		newsdesk.Finalize(newsdesk.WithBody[api.CreateArticleInput](p.Staff), http.MethodPost, "/article", h.createArticle,
			newsdesk.Named("CreateArticle"), newsdesk.Summary("Creates a draft article from Markdown.")),
		newsdesk.Finalize(newsdesk.WithBody[api.SchedulePostInput](p.Editors), http.MethodPost, "/{id}/schedule", h.schedulePost,
			newsdesk.Named("SchedulePost"), newsdesk.Summary("Schedules a post for publication.")),
		newsdesk.Finalize(p.Editors, http.MethodPost, "/{id}/publish", h.publishPost,
			newsdesk.Named("PublishPost"), newsdesk.Summary("Publishes a post now.")),
		newsdesk.Finalize(p.Admin, http.MethodDelete, "/{id}", h.deletePost,
			newsdesk.Named("DeletePost")),
	)

	root.Subroute("/media").Config(
		newsdesk.Finalize(p.Staff, http.MethodPost, "/images", h.uploadImage,
			newsdesk.Named("UploadImage"), newsdesk.Upload(imageField),
			newsdesk.Summary("Uploads an image to object storage.")),
	)

	root.Config(
		newsdesk.Finalize(newsdesk.WithQuery[api.SearchQuery](p.Public), http.MethodGet, "/search", h.search,
			newsdesk.Named("Search"), newsdesk.Summary("Full-text search over published posts.")),
	)

	root.Subroute("/auth").Config(
		newsdesk.Finalize(p.Authed, http.MethodGet, "/me", h.me, newsdesk.Named("Me")),
		newsdesk.Finalize(p.Authed, http.MethodPost, "/logout", h.logout, newsdesk.Named("Logout")),
		newsdesk.Finalize(p.Public, http.MethodGet, "/google", h.googleLogin,
			newsdesk.Named("GoogleLogin"), newsdesk.Summary("Starts Google sign-in.")),
		newsdesk.Finalize(newsdesk.WithQuery[api.OAuthCallbackQuery](p.Public), http.MethodGet, "/google/callback", h.googleCallback,
			newsdesk.Named("GoogleCallback")),
	)
}

func (h *Handlers) listPosts(c newsdesk.Context, _ newsdesk.Empty, q api.ListPostsQuery) (api.PostPage, error) {
	return h.svc.List(c, q)
}

func (h *Handlers) getPost(c newsdesk.Context, _, _ newsdesk.Empty) (api.Post, error) {
	post, err := h.svc.Published(c, c.Param("slug"))
	if err != nil {
		return api.Post{}, postError(err)
	}
	return post, nil
}

func (h *Handlers) createGallery(c newsdesk.Context, in api.CreateGalleryInput, _ newsdesk.Empty) (api.Post, error) {
	p, err := h.svc.CreateGallery(c, h.proc.Auth.User(c), in)
	if err != nil {
		return api.Post{}, postError(err)
	}
	c.LogInfo("gallery created", slog.String("post_id", p.ID), slog.String("slug", p.Slug))
	return p.API(), nil
}

func (h *Handlers) createArticle(c newsdesk.Context, in api.CreateArticleInput, _ newsdesk.Empty) (api.Post, error) {
	p, err := h.svc.CreateArticle(c, h.proc.Auth.User(c), in)
	if err != nil {
		return api.Post{}, postError(err)
	}
	c.LogInfo("article created", slog.String("post_id", p.ID), slog.String("slug", p.Slug))
	return p.API(), nil
}

func (h *Handlers) schedulePost(c newsdesk.Context, in api.SchedulePostInput, _ newsdesk.Empty) (api.Post, error) {
	postID, err := pathID(c)
	if err != nil {
		return api.Post{}, err
	}
	p, err := h.svc.Schedule(c, postID, in.PublishAt)
	if err != nil {
		return api.Post{}, postError(err)
	}
	return p.API(), nil
}

func (h *Handlers) publishPost(c newsdesk.Context, _, _ newsdesk.Empty) (api.Post, error) {
	postID, err := pathID(c)
	if err != nil {
		return api.Post{}, err
	}
	p, err := h.svc.Publish(c, postID)
	if err != nil {
		return api.Post{}, postError(err)
	}
	return p.API(), nil
}

func (h *Handlers) deletePost(c newsdesk.Context, _, _ newsdesk.Empty) (api.Deleted, error) {
	postID, err := pathID(c)
	if err != nil {
		return api.Deleted{}, err
	}
	if err := h.svc.Delete(c, postID); err != nil {
		return api.Deleted{}, postError(err)
	}
	return api.Deleted{ID: postID}, nil
}

func (h *Handlers) search(c newsdesk.Context, _ newsdesk.Empty, q api.SearchQuery) (api.SearchResults, error) {
	hits, err := h.svc.Search(c, q.Q, q.Limit)
	if err != nil {
		return api.SearchResults{}, err
	}
	out := api.SearchResults{Query: q.Q, Hits: make([]api.SearchHit, 0, len(hits))}
	for _, hit := range hits {
		out.Hits = append(out.Hits, hit.API())
	}
	return out, nil
}

// pathID reads the {id} segment. Malformed IDs cannot name a post.
func pathID(c newsdesk.Context) (string, error) {
	postID := c.Param("id")
	if !id.Valid(postID) {
		return "", newsdesk.ErrNotFound("post not found")
	}
	return postID, nil
}

// postError maps domain errors to API errors. Anything else is internal.
func postError(err error) error {
	switch {
	case errors.Is(err, ErrPostNotFound):
		return newsdesk.ErrNotFound("post not found", newsdesk.WithCause(err))
	case errors.Is(err, ErrAlreadyPublished):
		return newsdesk.ErrValidation([]newsdesk.FieldError{{Field: "status", Message: "post is already published"}}, newsdesk.WithCause(err))
	case errors.Is(err, ErrPublishInPast):
		return newsdesk.ErrValidation([]newsdesk.FieldError{{Field: "publishAt", Message: "must be in the future"}}, newsdesk.WithCause(err))
	case errors.Is(err, markdown.ErrInvalidFrontmatter):
		return newsdesk.ErrValidation([]newsdesk.FieldError{{Field: "body", Message: "invalid frontmatter"}}, newsdesk.WithCause(err))
	}
	return err
}
