package issued_test

import (
	"context"
	"path/filepath"
	"testing"

	"ekwe/internal/issued"
)

func openStore(t *testing.T) *issued.Store {
	t.Helper()
	store, err := issued.Open(filepath.Join(t.TempDir(), "issued.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAbsentDatabaseIsEmptySet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	has, err := store.Has(ctx, "udo")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if has {
		t.Fatal("fresh store must be empty")
	}
	count, err := store.Count(ctx)
	if err != nil || count != 0 {
		t.Fatalf("Count = %d, %v", count, err)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, "udo"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Add(ctx, "udo"); err != nil {
		t.Fatalf("second Add: %v", err)
	}

	has, err := store.Has(ctx, "udo")
	if err != nil || !has {
		t.Fatalf("Has = %v, %v", has, err)
	}
	count, err := store.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("Count = %d, %v", count, err)
	}
}

func TestAllAndRemove(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, word := range []string{"udo", "ọkụkọ", "mmirioku"} {
		if err := store.Add(ctx, word); err != nil {
			t.Fatalf("Add(%q): %v", word, err)
		}
	}

	words, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %v", words)
	}

	if err := store.Remove(ctx, "udo"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	has, err := store.Has(ctx, "udo")
	if err != nil || has {
		t.Fatalf("removed word still present: %v %v", has, err)
	}
}

func TestReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issued.db")
	ctx := context.Background()

	store, err := issued.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Add(ctx, "udo"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := issued.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	has, err := reopened.Has(ctx, "udo")
	if err != nil || !has {
		t.Fatalf("state lost across reopen: %v %v", has, err)
	}
}
