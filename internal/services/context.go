package services

import "context"

type contextKey string

const (
	wordKey  contextKey = "word"
	issueKey contextKey = "issue"
	runIDKey contextKey = "run_id"
)

// WithWord annotates context with the dictionary word being processed.
func WithWord(ctx context.Context, word string) context.Context {
	if word == "" {
		return ctx
	}
	return context.WithValue(ctx, wordKey, word)
}

// WordFromContext returns the dictionary word if present.
func WordFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(wordKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithIssue annotates context with the tracker issue number.
func WithIssue(ctx context.Context, number int64) context.Context {
	if number <= 0 {
		return ctx
	}
	return context.WithValue(ctx, issueKey, number)
}

// IssueFromContext extracts the tracker issue number if present.
func IssueFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(issueKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithRunID annotates context with the run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
