package logging

import (
	"context"
	"log/slog"

	"ekwe/internal/services"
)

// ContextAttrs returns the correlation attributes carried by ctx, in a
// stable order. Both handlers prepend these to every record so a run's lines
// can be grepped by run_id or word without each call site repeating them.
func ContextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if id, ok := services.RunIDFromContext(ctx); ok {
		attrs = append(attrs, slog.String("run_id", id))
	}
	if word, ok := services.WordFromContext(ctx); ok {
		attrs = append(attrs, slog.String("word", word))
	}
	if number, ok := services.IssueFromContext(ctx); ok {
		attrs = append(attrs, slog.Int64("issue", number))
	}
	return attrs
}

// contextHandler decorates another handler with the context attributes.
type contextHandler struct {
	inner slog.Handler
}

func (h contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h contextHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs := ContextAttrs(ctx); len(attrs) > 0 {
		record = record.Clone()
		record.AddAttrs(attrs...)
	}
	return h.inner.Handle(ctx, record)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{inner: h.inner.WithGroup(name)}
}
