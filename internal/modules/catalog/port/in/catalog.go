package in

import (
	"context"

	"lectern/internal/modules/catalog/dto"
)

type Usecase interface {
	ListBooks(ctx context.Context, input dto.ListBooksInput) (dto.PageOutput, error)
	GetBook(ctx context.Context, id int64) (dto.BookOutput, error)
	BooksByAuthor(ctx context.Context, authorID int64, limit int) ([]dto.BookOutput, error)
	Recommendations(ctx context.Context, limit int) ([]dto.BookOutput, error)
	ClearCache(ctx context.Context) error
}
