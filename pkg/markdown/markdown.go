// Package markdown renders post bodies. Output is always passed through the
// HTML sanitizer, so raw markup in the source never reaches readers.
//
//	doc, err := markdown.Render([]byte(in.Body))
//	post.BodyHTML = doc.HTML
//	post.Tags = doc.Meta.Tags
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/dmitrymomot/newsdesk/pkg/sanitizer"
)

var (
	ErrInvalidFrontmatter = errors.New("markdown: invalid frontmatter")
	ErrRenderFailed       = errors.New("markdown: render failed")
)

// Document is a rendered post body.
type Document struct {
	Meta Meta
	HTML string
	Text string
}

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM, Figures()),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	textPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)
)

// Render converts src to sanitized HTML and plain text.
func Render(src []byte) (*Document, error) {
	meta, body, err := splitFrontmatter(src)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	safe := sanitizer.SanitizeHTML(buf.String())
	text := html.UnescapeString(sanitizer.SanitizeHTMLCustom(safe, textPolicy))
	return &Document{
		Meta: meta,
		HTML: safe,
		Text: sanitizer.CollapseSpaces(text),
	}, nil
}

// Excerpt returns the first n runes of text, cut at a word boundary.
func Excerpt(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
