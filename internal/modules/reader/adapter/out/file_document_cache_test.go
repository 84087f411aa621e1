package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	readerout "lectern/internal/modules/reader/adapter/out"
	apperrors "lectern/internal/platform/errors"
)

func TestFileDocumentCacheRoundTrip(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "documents")
	cache := readerout.NewFileDocumentCache(dir)
	ctx := context.Background()

	if _, err := cache.Load(ctx, 7); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected miss, got %v", err)
	}
	path, err := cache.Store(ctx, 7, []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if path != filepath.Join(dir, "7.pdf") || cache.Path(7) != path {
		t.Fatalf("unexpected path %q", path)
	}
	payload, err := cache.Load(ctx, 7)
	if err != nil || string(payload) != "%PDF-1.4" {
		t.Fatalf("load: %q err=%v", payload, err)
	}
	if err := cache.Evict(ctx, 7); err != nil {
		t.Fatalf("evict: %v", err)
	}
	if err := cache.Evict(ctx, 7); err != nil {
		t.Fatalf("second evict should be a no-op: %v", err)
	}
	if _, err := cache.Load(ctx, 7); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected miss after evict, got %v", err)
	}
}
