package cms_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/api"
	"github.com/dmitrymomot/newsdesk/pkg/id"
)

const mainImage = "0190F1C2-7A3B-7C4D-8E5F-0123456789AB"

func galleryBody(fields map[string]string) string {
	body := map[string]string{
		"title":            "  Alpine   Glacier  ",
		"type":             " PHOTO ",
		"credits":          " Jane Doe ",
		"link":             "https://example.com/alps",
		"mainImageUuid":    mainImage,
		"mainImageCaption": "<em>Ice</em>",
		"excerpt":          "<script>alert(1)</script>A walk across the ice",
	}
	for k, v := range fields {
		if v == "" {
			delete(body, k)
			continue
		}
		body[k] = v
	}
	out := "{"
	first := true
	for k, v := range body {
		if !first {
			out += ","
		}
		first = false
		out += fmt.Sprintf("%q:%q", k, v)
	}
	return out + "}"
}

func TestCreateGallery(t *testing.T) {
	t.Parallel()

	t.Run("editor gets the cleansed record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec, env := f.call(t, http.MethodPost, "/posts/gallery", galleryBody(nil), bearer(editorToken))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.True(t, env.OK)

		post := decode[api.Post](t, env)
		assert.True(t, id.Valid(post.ID))
		assert.Equal(t, api.KindGallery, post.Kind)
		assert.Equal(t, api.StatusDraft, post.Status)
		assert.Equal(t, "Alpine Glacier", post.Title)
		assert.Equal(t, "alpine-glacier", post.Slug)
		assert.Equal(t, f.editor.ID, post.AuthorID)
		assert.NotContains(t, post.Excerpt, "<script>")
		require.NotNil(t, post.Gallery)
		assert.Equal(t, api.GalleryPhoto, post.Gallery.Type)
		assert.Equal(t, "Jane Doe", post.Gallery.Credits)
		assert.Equal(t, "Ice", post.Gallery.MainImageCaption)
		assert.Equal(t, "0190f1c2-7a3b-7c4d-8e5f-0123456789ab", post.Gallery.MainImageUUID)

		assert.Len(t, f.store.Posts(), 1)
	})

	t.Run("no session is 401 and nothing is stored", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec, env := f.call(t, http.MethodPost, "/posts/gallery", galleryBody(nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "authentication_error", env.Error.Kind)
		assert.Empty(t, f.store.Posts())
	})

	t.Run("missing type is 400", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec, env := f.call(t, http.MethodPost, "/posts/gallery", galleryBody(map[string]string{"type": ""}), bearer(editorToken))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "validation_error", env.Error.Kind)
		assert.Contains(t, env.fieldNames(), "type")
		assert.Empty(t, f.store.Posts())
	})

	t.Run("unknown type and missing link are both reported", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec, env := f.call(t, http.MethodPost, "/posts/gallery",
			galleryBody(map[string]string{"type": "poster", "link": ""}), bearer(editorToken))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.ElementsMatch(t, []string{"type", "link"}, env.fieldNames())
	})

	t.Run("admin with free-form values", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		body := `{"credits":"x","link":"y","title":"z","mainImageCaption":"c","type":"photo","mainImageUuid":"u","excerpt":"e"}`
		rec, env := f.call(t, http.MethodPost, "/posts/gallery", body, bearer(adminToken))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		post := decode[api.Post](t, env)
		assert.Equal(t, "z", post.Title)
		assert.Equal(t, "e", post.Excerpt)
		require.NotNil(t, post.Gallery)
		assert.Equal(t, "y", post.Gallery.Link)
		assert.Equal(t, "u", post.Gallery.MainImageUUID)
		assert.Len(t, f.store.Posts(), 1)
	})

	t.Run("duplicate titles get distinct slugs", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, first := f.call(t, http.MethodPost, "/posts/gallery", galleryBody(nil), bearer(editorToken))
		rec, second := f.call(t, http.MethodPost, "/posts/gallery", galleryBody(nil), bearer(editorToken))
		require.Equal(t, http.StatusOK, rec.Code)

		a, b := decode[api.Post](t, first), decode[api.Post](t, second)
		assert.Equal(t, "alpine-glacier", a.Slug)
		assert.Regexp(t, `^alpine-glacier-[a-z0-9]{6}$`, b.Slug)
	})
}

func TestAccessLevels(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		token  string
		want   int
	}{
		{"writer cannot create galleries", http.MethodPost, "/posts/gallery", galleryBody(nil), writerToken, http.StatusForbidden},
		{"admin creates galleries", http.MethodPost, "/posts/gallery", galleryBody(map[string]string{"title": "Admin gallery"}), adminToken, http.StatusOK},
		{"writer creates articles", http.MethodPost, "/posts/article", `{"title":"Notes","body":"Hello"}`, writerToken, http.StatusOK},
		{"disabled user is rejected", http.MethodPost, "/posts/article", `{"title":"Notes","body":"Hello"}`, disabledToken, http.StatusUnauthorized},
		{"unknown token is rejected", http.MethodGet, "/auth/me", "", "nope", http.StatusUnauthorized},
		{"editor cannot delete", http.MethodDelete, "/posts/" + id.New(), "", editorToken, http.StatusForbidden},
		{"admin deleting a missing post", http.MethodDelete, "/posts/" + id.New(), "", adminToken, http.StatusNotFound},
		{"writer cannot publish", http.MethodPost, "/posts/" + id.New() + "/publish", "", writerToken, http.StatusForbidden},
		{"malformed id", http.MethodPost, "/posts/not-an-id/publish", "", editorToken, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, _ := f.call(t, tt.method, tt.target, tt.body, bearer(tt.token))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestEditorialWorkflow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	body := `{"title":"Glacier report","body":"---\nsummary: Ice is <b>melting</b>\ntags: [Climate, alps]\n---\n# Glacier\n\nThe ice retreats every year.","tags":["alps","Science"]}`
	rec, env := f.call(t, http.MethodPost, "/posts/article", body, bearer(writerToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	article := decode[api.Post](t, env)
	assert.Equal(t, api.KindArticle, article.Kind)
	assert.Equal(t, "Ice is melting", article.Excerpt)
	assert.Equal(t, []string{"alps", "science", "climate"}, article.Tags)
	assert.Contains(t, article.BodyHTML, "<h1")

	// Drafts are invisible to readers.
	rec, _ = f.call(t, http.MethodGet, "/posts/"+article.Slug, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = f.call(t, http.MethodPost, "/posts/"+article.ID+"/schedule",
		`{"publishAt":"2001-01-01T00:00:00Z"}`, bearer(editorToken))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"publishAt"}, env.fieldNames())

	at := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	rec, env = f.call(t, http.MethodPost, "/posts/"+article.ID+"/schedule",
		fmt.Sprintf(`{"publishAt":%q}`, at.Format(time.RFC3339)), bearer(editorToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	scheduled := decode[api.Post](t, env)
	assert.Equal(t, api.StatusScheduled, scheduled.Status)
	require.NotNil(t, scheduled.PublishAt)
	assert.True(t, at.Equal(*scheduled.PublishAt))
	require.Len(t, f.sched.Calls(), 1)
	assert.Equal(t, article.ID, f.sched.Calls()[0].PostID)

	rec, env = f.call(t, http.MethodPost, "/posts/"+article.ID+"/publish", "", bearer(editorToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	published := decode[api.Post](t, env)
	assert.Equal(t, api.StatusPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)

	rec, env = f.call(t, http.MethodPost, "/posts/"+article.ID+"/schedule",
		fmt.Sprintf(`{"publishAt":%q}`, at.Format(time.RFC3339)), bearer(editorToken))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"status"}, env.fieldNames())

	rec, env = f.call(t, http.MethodGet, "/posts/"+article.Slug, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, article.ID, decode[api.Post](t, env).ID)

	rec, env = f.call(t, http.MethodGet, "/posts?kind=article", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[api.PostPage](t, env)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 1, page.Total)
	assert.False(t, page.HasMore)
	require.Len(t, page.Items, 1)
	assert.Empty(t, page.Items[0].BodyHTML)

	rec, env = f.call(t, http.MethodGet, "/search?q=retreats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[api.SearchResults](t, env)
	require.Len(t, results.Hits, 1)
	assert.Equal(t, article.Slug, results.Hits[0].Slug)

	rec, env = f.call(t, http.MethodDelete, "/posts/"+article.ID, "", bearer(adminToken))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, api.Deleted{ID: article.ID}, decode[api.Deleted](t, env))

	rec, _ = f.call(t, http.MethodGet, "/posts/"+article.Slug, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "deleting evicts the cached post")
	assert.Zero(t, f.search.Len())
}

func TestListPostsQuery(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for i := range 3 {
		_, env := f.call(t, http.MethodPost, "/posts/article",
			fmt.Sprintf(`{"title":"Post %d","body":"Body %d"}`, i, i), bearer(writerToken))
		p := decode[api.Post](t, env)
		rec, _ := f.call(t, http.MethodPost, "/posts/"+p.ID+"/publish", "", bearer(editorToken))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, env := f.call(t, http.MethodGet, "/posts?page=1&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[api.PostPage](t, env)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Total)
	assert.True(t, page.HasMore)

	_, env = f.call(t, http.MethodGet, "/posts?page=2&limit=2", "")
	page = decode[api.PostPage](t, env)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)

	rec, env = f.call(t, http.MethodGet, "/posts?page=9223372036854775807&limit=100", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"page"}, env.fieldNames())

	rec, env = f.call(t, http.MethodGet, "/posts?page=10000&limit=100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[api.PostPage](t, env)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)

	rec, env = f.call(t, http.MethodGet, "/posts?kind=video&limit=500", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []string{"kind", "limit"}, env.fieldNames())

	rec, env = f.call(t, http.MethodGet, "/search?q=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"q"}, env.fieldNames())
}
