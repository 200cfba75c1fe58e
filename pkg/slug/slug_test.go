package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []slug.Option
		expected string
	}{
		{name: "simple text", input: "Hello World", expected: "hello-world"},
		{name: "punctuation", input: "Hello, World!", expected: "hello-world"},
		{name: "diacritics", input: "Café & Restaurant", expected: "cafe-restaurant"},
		{name: "sharp s", input: "München Straße", expected: "munchen-strasse"},
		{name: "spaces", input: "  Too    Many  Spaces ", expected: "too-many-spaces"},
		{name: "non latin dropped", input: "Привет world", expected: "world"},
		{name: "separator", input: "Product Name", opts: []slug.Option{slug.Separator("_")}, expected: "product_name"},
		{name: "keep case", input: "Product Name", opts: []slug.Option{slug.Lowercase(false)}, expected: "Product-Name"},
		{
			name:     "replacements",
			input:    "Fish & Chips",
			opts:     []slug.Option{slug.CustomReplace(map[string]string{"&": "and"})},
			expected: "fish-and-chips",
		},
		{name: "max length cuts at word", input: "Long Article Title", opts: []slug.Option{slug.MaxLength(14)}, expected: "long-article"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slug.Make(tt.input, tt.opts...))
		})
	}
}

func TestMakeWithSuffix(t *testing.T) {
	t.Parallel()

	a := slug.Make("Article Title", slug.WithSuffix(6))
	b := slug.Make("Article Title", slug.WithSuffix(6))

	require.True(t, strings.HasPrefix(a, "article-title-"))
	assert.Len(t, strings.TrimPrefix(a, "article-title-"), 6)
	assert.NotEqual(t, a, b)

	short := slug.Make("Article Title", slug.WithSuffix(4), slug.MaxLength(12))
	assert.LessOrEqual(t, len(short), 12)
}
