package out

import (
	"context"

	catalogin "lectern/internal/modules/catalog/port/in"
	"lectern/internal/modules/reader/domain"
	readerout "lectern/internal/modules/reader/port/out"
)

type CatalogBookAdapter struct {
	catalog catalogin.Usecase
}

func NewCatalogBookAdapter(catalog catalogin.Usecase) readerout.BookResolver {
	return &CatalogBookAdapter{catalog: catalog}
}

func (a *CatalogBookAdapter) Resolve(ctx context.Context, bookID int64) (domain.BookRef, error) {
	book, err := a.catalog.GetBook(ctx, bookID)
	if err != nil {
		return domain.BookRef{}, err
	}
	authors := make([]string, 0, len(book.Authors))
	for _, author := range book.Authors {
		authors = append(authors, author.Name)
	}
	return domain.BookRef{
		ID:             book.ID,
		Title:          book.Title,
		Authors:        authors,
		Synopsis:       book.Synopsis,
		DocumentURL:    book.DocumentURL,
		TotalPagesHint: book.TotalPages,
	}, nil
}
