package usecase

import (
	"context"

	"lectern/internal/modules/catalog/domain"
	"lectern/internal/modules/catalog/dto"
	catalogin "lectern/internal/modules/catalog/port/in"
	"lectern/internal/modules/catalog/service"
)

type Interactor struct {
	svc *service.CatalogService
}

func NewInteractor(svc *service.CatalogService) catalogin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) ListBooks(ctx context.Context, input dto.ListBooksInput) (dto.PageOutput, error) {
	page, err := i.svc.ListBooks(ctx, input.Page, input.Limit)
	if err != nil {
		return dto.PageOutput{}, err
	}
	return dto.PageOutput{
		Books:      toOutputs(page.Books),
		Count:      page.Count,
		Page:       page.Number,
		TotalPages: page.TotalPages,
	}, nil
}

func (i *Interactor) GetBook(ctx context.Context, id int64) (dto.BookOutput, error) {
	book, cached, err := i.svc.GetBook(ctx, id)
	if err != nil {
		return dto.BookOutput{}, err
	}
	out := toOutput(book)
	out.FromCache = cached
	return out, nil
}

func (i *Interactor) BooksByAuthor(ctx context.Context, authorID int64, limit int) ([]dto.BookOutput, error) {
	books, err := i.svc.BooksByAuthor(ctx, authorID, limit)
	if err != nil {
		return nil, err
	}
	return toOutputs(books), nil
}

func (i *Interactor) Recommendations(ctx context.Context, limit int) ([]dto.BookOutput, error) {
	books, err := i.svc.Recommendations(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toOutputs(books), nil
}

func (i *Interactor) ClearCache(ctx context.Context) error {
	return i.svc.ClearCache(ctx)
}

func toOutputs(books []domain.Book) []dto.BookOutput {
	out := make([]dto.BookOutput, 0, len(books))
	for _, book := range books {
		out = append(out, toOutput(book))
	}
	return out
}

func toOutput(book domain.Book) dto.BookOutput {
	authors := make([]dto.AuthorOutput, 0, len(book.Authors))
	for _, author := range book.Authors {
		authors = append(authors, dto.AuthorOutput{ID: author.ID, Name: author.Name})
	}
	return dto.BookOutput{
		ID:          book.ID,
		Title:       book.Title,
		TotalPages:  book.TotalPages,
		Synopsis:    book.Synopsis,
		DocumentURL: book.DocumentLink(),
		CoverURL:    book.CoverURL,
		Publisher:   book.Publisher,
		Authors:     authors,
		Categories:  book.Categories,
		Languages:   book.Languages,
		HasDocument: book.HasDocument(),
	}
}
