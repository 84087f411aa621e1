package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sessionout "lectern/internal/modules/session/adapter/out"
	"lectern/internal/modules/session/domain"
	apperrors "lectern/internal/platform/errors"
)

func TestActiveSessionStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "active-session.json")
	store := sessionout.NewFileActiveSessionStore(path)

	if _, err := store.LoadActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
	session := domain.ReadingSession{
		LocalID:     "local-1",
		SessionID:   "rec-3",
		UserID:      7,
		BookID:      3,
		BookTitle:   "Pedro Páramo",
		CurrentPage: 14,
		TotalPages:  120,
		TotalSource: domain.TotalDocument,
		OpenedAt:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	session.MarkPersisted(10, domain.StatusInProgress)
	if err := store.SaveActive(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.LoadActive(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.OpenedAt.Equal(session.OpenedAt) {
		t.Fatalf("opened_at changed: %s", loaded.OpenedAt)
	}
	loaded.OpenedAt = session.OpenedAt
	if loaded != session {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, session)
	}
	if err := store.ClearActive(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.ClearActive(ctx); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
	if _, err := store.LoadActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected cleared session, got %v", err)
	}
}

func TestActiveSessionStoreRejectsUnknownSchema(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "active-session.json")
	if err := os.WriteFile(path, []byte(`{"schema_version":99,"session":{"local_id":"x","book_id":1}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := sessionout.NewFileActiveSessionStore(path).LoadActive(context.Background())
	if err == nil || !strings.Contains(err.Error(), "schema") {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestJournalStoreWritesFrontmatterNote(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := sessionout.NewMarkdownJournalStore(dir)
	opened := time.Date(2026, 3, 2, 18, 5, 9, 0, time.UTC)
	path, err := store.Save(context.Background(), domain.JournalEntry{
		ID:          "local-1",
		SessionID:   "rec-1",
		BookID:      1,
		BookTitle:   "Cien años de soledad",
		OpenedAt:    opened,
		ClosedAt:    opened.Add(25 * time.Minute),
		DurationMin: 25,
		StartPage:   3,
		EndPage:     11,
		TotalPages:  400,
		Status:      domain.StatusInProgress,
		Trigger:     "quit",
		Warning:     "persist reading session rec-1 at page 11: timeout",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if path != filepath.Join(dir, "2026", "03", "02", "180509-local-1-cien-anos-de-soledad.md") {
		t.Fatalf("unexpected journal path %q", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	note := string(raw)
	for _, want := range []string{"book_id: 1", "end_page: 11", "trigger: quit", "persisted: false", "(8 read)", "## Not saved"} {
		if !strings.Contains(note, want) {
			t.Fatalf("journal note missing %q:\n%s", want, note)
		}
	}
}

func TestJournalStoreKeepsSessionsOpenedInTheSameSecond(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := sessionout.NewMarkdownJournalStore(dir)
	opened := time.Date(2026, 3, 2, 18, 5, 9, 0, time.UTC)
	entry := domain.JournalEntry{
		BookID:    1,
		BookTitle: "Aura",
		OpenedAt:  opened,
		ClosedAt:  opened.Add(time.Minute),
		StartPage: 1,
		EndPage:   4,
		Status:    domain.StatusInProgress,
	}
	first, second := entry, entry
	first.ID = "0f8c2d4e-aaaa-4bbb-8ccc-000000000001"
	second.ID = "7a1b9e3c-aaaa-4bbb-8ccc-000000000002"

	firstPath, err := store.Save(context.Background(), first)
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	secondPath, err := store.Save(context.Background(), second)
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if firstPath == secondPath {
		t.Fatalf("notes collided at %q", firstPath)
	}
	if filepath.Base(firstPath) != "180509-0f8c2d4e-aura.md" {
		t.Fatalf("unexpected note name %q", filepath.Base(firstPath))
	}
	for _, p := range []string{firstPath, secondPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("note missing: %v", err)
		}
	}
}
