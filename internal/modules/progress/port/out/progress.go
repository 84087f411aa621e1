package out

import (
	"context"

	"lectern/internal/modules/progress/domain"
)

// Gateway is the backend's reading-record API.
type Gateway interface {
	// Lookup returns apperrors.ErrNotFound when the user has no record for
	// the book.
	Lookup(ctx context.Context, userID, bookID int64) (domain.Record, error)
	Create(ctx context.Context, bookID int64, page int, status domain.Status) (domain.Record, error)
	Update(ctx context.Context, id string, page int, status domain.Status) error
	// ListByStatus returns the records in a status and the envelope count.
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Record, int, error)
	PagesRead(ctx context.Context) (int, error)
}
