package services_test

import (
	"context"
	"testing"

	"ekwe/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithWord(ctx, "mmirioku")
	ctx = services.WithIssue(ctx, 42)
	ctx = services.WithRunID(ctx, "run-123")

	if word, ok := services.WordFromContext(ctx); !ok || word != "mmirioku" {
		t.Fatalf("unexpected word: %v %v", word, ok)
	}
	if issue, ok := services.IssueFromContext(ctx); !ok || issue != 42 {
		t.Fatalf("unexpected issue: %v %v", issue, ok)
	}
	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithWord(ctx, "")
	ctx = services.WithIssue(ctx, 0)
	if _, ok := services.WordFromContext(ctx); ok {
		t.Fatal("expected no word value")
	}
	if _, ok := services.IssueFromContext(ctx); ok {
		t.Fatal("expected no issue value")
	}
}
