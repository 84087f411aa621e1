package out

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"lectern/internal/modules/session/domain"
	sessionout "lectern/internal/modules/session/port/out"
	"lectern/internal/platform/markdown"
	"lectern/internal/platform/slug"
)

type journalMeta struct {
	SchemaVersion int    `yaml:"schema_version"`
	ID            string `yaml:"id"`
	SessionID     string `yaml:"session_id,omitempty"`
	BookID        int64  `yaml:"book_id"`
	BookTitle     string `yaml:"book_title"`
	OpenedAt      string `yaml:"opened_at"`
	ClosedAt      string `yaml:"closed_at"`
	DurationMin   int    `yaml:"duration_minutes"`
	StartPage     int    `yaml:"start_page"`
	EndPage       int    `yaml:"end_page"`
	TotalPages    int    `yaml:"total_pages,omitempty"`
	Status        string `yaml:"status"`
	Trigger       string `yaml:"trigger"`
	Persisted     bool   `yaml:"persisted"`
	Offline       bool   `yaml:"offline,omitempty"`
}

// MarkdownJournalStore writes one markdown note with YAML frontmatter per
// closed reading session.
type MarkdownJournalStore struct {
	dir string
}

func NewMarkdownJournalStore(dir string) sessionout.JournalStore {
	return &MarkdownJournalStore{dir: dir}
}

func (s *MarkdownJournalStore) Save(_ context.Context, entry domain.JournalEntry) (string, error) {
	date := entry.OpenedAt
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(entry.BookTitle))
	if short := shortID(entry.ID); short != "" {
		name = fmt.Sprintf("%s-%s-%s.md", date.Format("150405"), short, slug.Make(entry.BookTitle))
	}
	path := filepath.Join(s.dir, date.Format("2006"), date.Format("01"), date.Format("02"), name)

	note := markdown.Note{
		Meta: journalMeta{
			SchemaVersion: domain.SchemaVersion,
			ID:            entry.ID,
			SessionID:     entry.SessionID,
			BookID:        entry.BookID,
			BookTitle:     entry.BookTitle,
			OpenedAt:      entry.OpenedAt.Format(time.RFC3339),
			ClosedAt:      entry.ClosedAt.Format(time.RFC3339),
			DurationMin:   entry.DurationMin,
			StartPage:     entry.StartPage,
			EndPage:       entry.EndPage,
			TotalPages:    entry.TotalPages,
			Status:        string(entry.Status),
			Trigger:       entry.Trigger,
			Persisted:     entry.Persisted,
			Offline:       entry.Offline,
		},
		Title: entry.BookTitle,
		Bullets: []string{
			fmt.Sprintf("Pages: %d -> %d (%d read)", entry.StartPage, entry.EndPage, entry.PagesRead()),
			fmt.Sprintf("Duration: %d minutes", entry.DurationMin),
			fmt.Sprintf("Status: %s", entry.Status),
		},
	}
	if entry.Warning != "" {
		note.Sections = append(note.Sections, markdown.Section{Heading: "Not saved", Body: entry.Warning})
	}
	if err := markdown.WriteNote(path, note); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	return path, nil
}

// shortID keeps notes of sessions opened within the same second apart.
func shortID(id string) string {
	id = slug.Make(id)
	if id == "untitled" {
		return ""
	}
	if len(id) > 8 {
		id = strings.TrimRight(id[:8], "-")
	}
	return id
}
