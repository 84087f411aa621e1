package out

import (
	"context"

	"lectern/internal/modules/session/domain"
)

// StoredProgress is the progress store's view of a session.
type StoredProgress struct {
	ID     string
	Page   int
	Status domain.Status
}

type ProgressStore interface {
	// Lookup returns apperrors.ErrNotFound when no record exists.
	Lookup(ctx context.Context, userID, bookID int64) (StoredProgress, error)
	// Create starts a record at page 1, in progress.
	Create(ctx context.Context, bookID int64) (StoredProgress, error)
	Update(ctx context.Context, id string, page int, status domain.Status) error
}

type BookInfo struct {
	Title     string
	PagesHint int
}

type CatalogPort interface {
	Book(ctx context.Context, bookID int64) (BookInfo, error)
}

type IdentityPort interface {
	CurrentUserID(ctx context.Context) (int64, error)
}

type ActiveSessionStore interface {
	SaveActive(ctx context.Context, session domain.ReadingSession) error
	// LoadActive returns apperrors.ErrNoActiveSession when nothing is open.
	LoadActive(ctx context.Context) (domain.ReadingSession, error)
	ClearActive(ctx context.Context) error
}

type JournalStore interface {
	Save(ctx context.Context, entry domain.JournalEntry) (string, error)
}
