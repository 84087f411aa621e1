package domain

import "time"

const SchemaVersion = 1

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// TotalSource records where TotalPages came from. A document count always
// wins over a catalog hint.
type TotalSource string

const (
	TotalUnknown  TotalSource = ""
	TotalHint     TotalSource = "hint"
	TotalDocument TotalSource = "document"
)

// ReadingSession tracks one user's position in one book. It is persisted as
// the active session between invocations, so every field is serialised.
type ReadingSession struct {
	LocalID     string      `json:"local_id"`
	SessionID   string      `json:"session_id"`
	UserID      int64       `json:"user_id"`
	BookID      int64       `json:"book_id"`
	BookTitle   string      `json:"book_title"`
	CurrentPage int         `json:"current_page"`
	TotalPages  int         `json:"total_pages"`
	TotalSource TotalSource `json:"total_source"`
	StartPage   int         `json:"start_page"`
	OpenedAt    time.Time   `json:"opened_at"`
	Offline     bool        `json:"offline"`

	PersistedPage   int    `json:"persisted_page"`
	PersistedStatus Status `json:"persisted_status"`
}

// Status is derived: completed once the current page reaches a known total.
func (s ReadingSession) Status() Status {
	if s.TotalPages > 0 && s.CurrentPage >= s.TotalPages {
		return StatusCompleted
	}
	return StatusInProgress
}

// SetPage moves to page if it lies within the book. Out-of-range requests
// leave the session untouched and report false.
func (s *ReadingSession) SetPage(page int) bool {
	if page < 1 {
		return false
	}
	if s.TotalPages > 0 && page > s.TotalPages {
		return false
	}
	if page == s.CurrentPage {
		return false
	}
	s.CurrentPage = page
	return true
}

func (s *ReadingSession) Turn(delta int) bool {
	return s.SetPage(s.CurrentPage + delta)
}

// ApplyHint sets the catalog page count unless the document has already
// reported one. A hint below the current page is discarded as unreliable.
func (s *ReadingSession) ApplyHint(total int) {
	if s.TotalSource == TotalDocument || total <= 0 {
		return
	}
	if total < s.CurrentPage {
		s.TotalPages = 0
		s.TotalSource = TotalUnknown
		return
	}
	s.TotalPages = total
	s.TotalSource = TotalHint
}

// ResolveTotalPages installs the document's authoritative page count and
// clamps the current page into it.
func (s *ReadingSession) ResolveTotalPages(count int) bool {
	if count <= 0 {
		return false
	}
	changed := s.TotalPages != count || s.TotalSource != TotalDocument
	s.TotalPages = count
	s.TotalSource = TotalDocument
	if s.CurrentPage > count {
		s.CurrentPage = count
		changed = true
	}
	if s.CurrentPage < 1 {
		s.CurrentPage = 1
		changed = true
	}
	return changed
}

// NeedsFlush reports whether the local position differs from what the
// progress store last acknowledged. Page 1 is the default and never flushed.
func (s ReadingSession) NeedsFlush() bool {
	if s.Offline || s.SessionID == "" || s.CurrentPage <= 1 {
		return false
	}
	return s.CurrentPage != s.PersistedPage || s.Status() != s.PersistedStatus
}

func (s *ReadingSession) MarkPersisted(page int, status Status) {
	s.PersistedPage = page
	s.PersistedStatus = status
}

// JournalEntry is the note written when a session closes.
type JournalEntry struct {
	ID          string
	SessionID   string
	BookID      int64
	BookTitle   string
	OpenedAt    time.Time
	ClosedAt    time.Time
	DurationMin int
	StartPage   int
	EndPage     int
	TotalPages  int
	Status      Status
	Trigger     string
	Persisted   bool
	Offline     bool
	Warning     string
}

func (e JournalEntry) PagesRead() int {
	if e.EndPage <= e.StartPage {
		return 0
	}
	return e.EndPage - e.StartPage
}
