package in

import (
	"context"

	"lectern/internal/modules/catalog/dto"
	catalogin "lectern/internal/modules/catalog/port/in"
)

type CLIHandler struct {
	usecase catalogin.Usecase
}

func NewCLIHandler(usecase catalogin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ListBooks(ctx context.Context, page, limit int) (dto.PageOutput, error) {
	return h.usecase.ListBooks(ctx, dto.ListBooksInput{Page: page, Limit: limit})
}

func (h CLIHandler) GetBook(ctx context.Context, id int64) (dto.BookOutput, error) {
	return h.usecase.GetBook(ctx, id)
}

func (h CLIHandler) BooksByAuthor(ctx context.Context, authorID int64, limit int) ([]dto.BookOutput, error) {
	return h.usecase.BooksByAuthor(ctx, authorID, limit)
}

func (h CLIHandler) Recommendations(ctx context.Context, limit int) ([]dto.BookOutput, error) {
	return h.usecase.Recommendations(ctx, limit)
}

func (h CLIHandler) ClearCache(ctx context.Context) error {
	return h.usecase.ClearCache(ctx)
}
