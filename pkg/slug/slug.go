// Package slug generates URL-safe slugs from arbitrary strings with Unicode normalization.
//
//	slug.Make("Café & Restaurant")                 // "cafe-restaurant"
//	slug.Make("Long Article Title", slug.MaxLength(12)) // "long-article"
//	slug.Make("Article", slug.WithSuffix(6))       // "article-x3k7f9"
package slug

import (
	"crypto/rand"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

type config struct {
	replace   map[string]string
	separator string
	maxLength int
	suffix    int
	lowercase bool
}

// Option configures Make.
type Option func(*config)

// MaxLength limits the slug to n runes, cutting at a separator when possible.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// Separator sets the string placed between words. Defaults to "-".
func Separator(sep string) Option {
	return func(c *config) {
		if sep != "" {
			c.separator = sep
		}
	}
}

// Lowercase controls case folding. Enabled by default.
func Lowercase(on bool) Option {
	return func(c *config) { c.lowercase = on }
}

// CustomReplace applies literal replacements before normalization.
func CustomReplace(m map[string]string) Option {
	return func(c *config) { c.replace = m }
}

// WithSuffix appends a random suffix of n lowercase alphanumerics.
func WithSuffix(n int) Option {
	return func(c *config) { c.suffix = n }
}

var specialFolds = strings.NewReplacer("ß", "ss", "æ", "ae", "Æ", "AE", "ø", "o", "Ø", "O", "ł", "l", "Ł", "L", "đ", "d", "Đ", "D")

// Make converts s into a slug.
func Make(s string, opts ...Option) string {
	cfg := &config{separator: "-", lowercase: true}
	for _, opt := range opts {
		opt(cfg)
	}

	for from, to := range cfg.replace {
		s = strings.ReplaceAll(s, from, " "+to+" ")
	}
	s = specialFolds.Replace(s)

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	if cfg.lowercase {
		s = strings.ToLower(s)
	}

	words := strings.FieldsFunc(s, func(r rune) bool {
		return r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	out := strings.Join(words, cfg.separator)

	if cfg.maxLength > 0 {
		reserve := 0
		if cfg.suffix > 0 {
			reserve = cfg.suffix + len(cfg.separator)
		}
		out = truncate(out, cfg.maxLength-reserve, cfg.separator)
	}

	if cfg.suffix > 0 {
		if out == "" {
			return randomSuffix(cfg.suffix)
		}
		out += cfg.separator + randomSuffix(cfg.suffix)
	}
	return out
}

func truncate(s string, n int, sep string) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, sep); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSuffix(cut, sep)
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return strings.Repeat("x", n)
	}
	for i := range b {
		b[i] = suffixAlphabet[int(b[i])%len(suffixAlphabet)]
	}
	return string(b)
}
