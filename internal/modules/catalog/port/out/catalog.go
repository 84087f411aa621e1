package out

import (
	"context"

	"lectern/internal/modules/catalog/domain"
)

type Gateway interface {
	ListBooks(ctx context.Context, skip, limit int) ([]domain.Book, error)
	CountBooks(ctx context.Context) (int, error)
	GetBook(ctx context.Context, id int64) (domain.Book, error)
	BooksByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Book, error)
	Recommendations(ctx context.Context, limit int) ([]domain.Book, error)
}

// BookCache keeps the last fetched copy of each book for offline lookups.
type BookCache interface {
	UpsertBook(ctx context.Context, book domain.Book) error
	FindBook(ctx context.Context, id int64) (domain.Book, error)
	Reset(ctx context.Context) error
	Close() error
}
