package schema_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/pkg/schema"
	"github.com/dmitrymomot/newsdesk/pkg/validator"
)

type galleryInput struct {
	Title   string   `json:"title" validate:"required;max:20" sanitize:"trim"`
	Type    string   `json:"type" validate:"required;oneof:photo|video"`
	Image   string   `json:"image" validate:"required;uuid"`
	Link    string   `json:"link" validate:"url"`
	Excerpt string   `json:"excerpt" sanitize:"trim,strip_html"`
	Tags    []string `json:"tags" validate:"max:2" sanitize:"lower"`
	Weight  *int     `json:"weight" validate:"min:1"`
}

type listQuery struct {
	Kind   *string   `query:"kind" validate:"oneof:article|gallery"`
	Since  time.Time `query:"since"`
	Page   int       `query:"page" default:"1" validate:"min:1"`
	Limit  int       `query:"limit" default:"20" validate:"min:1;max:100"`
	Drafts bool      `query:"drafts"`
}

func decodeBody(t *testing.T, s *schema.Schema[galleryInput], body string) (galleryInput, validator.ValidationErrors) {
	t.Helper()
	v, err := s.DecodeBody(strings.NewReader(body))
	if err == nil {
		return v, nil
	}
	verrs := validator.ExtractValidationErrors(err)
	require.NotNil(t, verrs, "expected validation errors, got %v", err)
	return v, verrs
}

func TestBodyDecodesAndSanitizes(t *testing.T) {
	t.Parallel()

	s := schema.Body[galleryInput]()
	in, errs := decodeBody(t, s, `{
		"title": "  Sunset  ",
		"type": "photo",
		"image": "0b7e3c1a-8f7d-4c55-9a3e-2d5d1f1a9c10",
		"excerpt": "<b>Golden</b> hour",
		"tags": ["Sky", "SEA"],
		"extra": true
	}`)

	require.Nil(t, errs)
	assert.Equal(t, "Sunset", in.Title)
	assert.Equal(t, "Golden hour", in.Excerpt)
	assert.Equal(t, []string{"sky", "sea"}, in.Tags)
	assert.Nil(t, in.Weight)
}

func TestBodyReportsEveryField(t *testing.T) {
	t.Parallel()

	s := schema.Body[galleryInput]()
	_, errs := decodeBody(t, s, `{"title": "   ", "type": "audio", "link": "nope", "weight": 0, "tags": ["a","b","c"]}`)

	require.NotNil(t, errs)
	assert.Equal(t, []string{"title", "type", "image", "link", "tags", "weight"}, errs.Fields())
	assert.Equal(t, []string{"field is required"}, errs.Get("title"))
	assert.Equal(t, []string{"must be one of: photo, video"}, errs.Get("type"))
}

func TestBodyTypeMismatch(t *testing.T) {
	t.Parallel()

	s := schema.Body[galleryInput]()
	_, errs := decodeBody(t, s, `{"title": 12, "type": "photo", "image": "0b7e3c1a-8f7d-4c55-9a3e-2d5d1f1a9c10"}`)

	require.NotNil(t, errs)
	assert.Equal(t, []string{"title"}, errs.Fields())
}

func TestBodyNotAnObject(t *testing.T) {
	t.Parallel()

	s := schema.Body[galleryInput]()
	for _, body := range []string{`[]`, `"x"`, `null`, `{`} {
		_, errs := decodeBody(t, s, body)
		require.NotNil(t, errs, body)
		assert.Equal(t, []string{schema.BodyField}, errs.Fields(), body)
	}
}

func TestBodyEmptyCountsAsObject(t *testing.T) {
	t.Parallel()

	s := schema.Body[galleryInput]()
	_, errs := decodeBody(t, s, ``)

	require.NotNil(t, errs)
	assert.Equal(t, []string{"title", "type", "image"}, errs.Fields())
}

func TestBodyRejectUnknown(t *testing.T) {
	t.Parallel()

	s := schema.Body[galleryInput](schema.Reject())
	_, errs := decodeBody(t, s, `{
		"title": "ok",
		"type": "video",
		"image": "0b7e3c1a-8f7d-4c55-9a3e-2d5d1f1a9c10",
		"zeta": 1,
		"alpha": 2
	}`)

	require.NotNil(t, errs)
	assert.Equal(t, []string{"alpha", "zeta"}, errs.Fields())
	assert.Equal(t, schema.PolicyReject, s.Shape().Policy)
}

func TestBodyMaxBytes(t *testing.T) {
	t.Parallel()

	s := schema.Body[galleryInput](schema.MaxBytes(16))
	_, errs := decodeBody(t, s, `{"title": "this body is longer than sixteen bytes"}`)

	require.NotNil(t, errs)
	assert.Equal(t, []string{schema.BodyField}, errs.Fields())
}

func TestQueryDefaultsAndConversion(t *testing.T) {
	t.Parallel()

	s := schema.Query[listQuery]()

	q, err := s.DecodeQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.Limit)
	assert.Nil(t, q.Kind)

	q, err = s.DecodeQuery(url.Values{
		"page":   {"3"},
		"limit":  {""},
		"kind":   {"gallery"},
		"since":  {"2026-01-02T03:04:05Z"},
		"drafts": {"true"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 20, q.Limit)
	require.NotNil(t, q.Kind)
	assert.Equal(t, "gallery", *q.Kind)
	assert.True(t, q.Drafts)
	assert.Equal(t, 2026, q.Since.Year())
}

func TestQueryErrors(t *testing.T) {
	t.Parallel()

	s := schema.Query[listQuery]()
	_, err := s.DecodeQuery(url.Values{
		"page":  {"zero"},
		"limit": {"500"},
		"kind":  {"poll"},
	})

	errs := validator.ExtractValidationErrors(err)
	require.NotNil(t, errs)
	assert.Equal(t, []string{"kind", "page", "limit"}, errs.Fields())
	assert.Equal(t, []string{"must be a valid integer"}, errs.Get("page"))
	assert.Equal(t, []string{"must not exceed 100"}, errs.Get("limit"))
}

func TestShapeDescribesFields(t *testing.T) {
	t.Parallel()

	shape := schema.Query[listQuery]().Shape()
	require.Len(t, shape.Fields, 5)
	assert.Equal(t, schema.SourceQuery, shape.Source)

	kind, ok := shape.Field("kind")
	require.True(t, ok)
	assert.True(t, kind.Optional())
	assert.Equal(t, "Kind", kind.GoName)

	page, ok := shape.Field("page")
	require.True(t, ok)
	assert.True(t, page.HasDefault)
	assert.Equal(t, "1", page.Default)
	assert.Equal(t, []string{"min:1"}, page.Rules)
}

func TestInvalidTagsPanic(t *testing.T) {
	t.Parallel()

	type badRule struct {
		N int `json:"n" validate:"oneof:a|b"`
	}
	type badSanitize struct {
		S string `json:"s" sanitize:"shout"`
	}
	type badDefault struct {
		N int `query:"n" default:"many"`
	}
	type badQuery struct {
		M map[string]string `query:"m"`
	}

	assert.Panics(t, func() { schema.Body[badRule]() })
	assert.Panics(t, func() { schema.Body[badSanitize]() })
	assert.Panics(t, func() { schema.Query[badDefault]() })
	assert.Panics(t, func() { schema.Query[badQuery]() })
	assert.Panics(t, func() { schema.Body[string]() })
}
