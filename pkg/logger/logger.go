// Package logger builds slog loggers that enrich records with request-scoped
// attributes and optionally forward warnings and errors to Sentry.
//
//	log := logger.New(middlewares.RequestIDExtractor(), newsdesk.UserIDExtractor())
//	log.InfoContext(ctx, "post published", slog.String("post_id", id))
//	// {"level":"INFO","msg":"post published","post_id":"...","request_id":"...","user_id":"..."}
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ContextExtractor pulls an attribute out of a context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// Config selects level and output format.
type Config struct {
	Sentry SentryConfig `koanf:"sentry"`
	Level  string       `koanf:"level"`  // debug, info, warn, error
	Format string       `koanf:"format"` // json (default) or text
}

// New returns a JSON logger on stdout at info level.
func New(extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewHandler(os.Stdout, Config{}, extractors...))
}

// NewWithConfig returns a stdout logger for cfg, adding a Sentry handler
// when cfg.Sentry.DSN is set.
func NewWithConfig(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	base := NewHandler(os.Stdout, cfg)
	if cfg.Sentry.DSN == "" {
		return slog.New(withExtractors(base, extractors))
	}
	sentryHandler, err := newSentryHandler(cfg.Sentry)
	if err != nil {
		slog.New(base).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(withExtractors(base, extractors))
	}
	return slog.New(withExtractors(newMultiHandler(base, sentryHandler), extractors))
}

// NewHandler builds the decorated handler writing to w.
func NewHandler(w io.Writer, cfg Config, extractors ...ContextExtractor) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return withExtractors(h, extractors)
}

// NewNope returns a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// contextHandler adds extracted attributes to every record.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func withExtractors(next slog.Handler, extractors []ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	if len(clean) == 0 {
		return next
	}
	return &contextHandler{next: next, extractors: clean}
}

// Enabled implements slog.Handler.
func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle adds the extracted attributes to rec.
func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

// WithAttrs implements slog.Handler.
func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

// WithGroup implements slog.Handler.
func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
