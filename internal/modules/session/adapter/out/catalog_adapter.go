package out

import (
	"context"

	catalogin "lectern/internal/modules/catalog/port/in"
	sessionout "lectern/internal/modules/session/port/out"
)

type CatalogAdapter struct {
	catalog catalogin.Usecase
}

func NewCatalogAdapter(catalog catalogin.Usecase) sessionout.CatalogPort {
	return &CatalogAdapter{catalog: catalog}
}

func (a *CatalogAdapter) Book(ctx context.Context, bookID int64) (sessionout.BookInfo, error) {
	book, err := a.catalog.GetBook(ctx, bookID)
	if err != nil {
		return sessionout.BookInfo{}, err
	}
	return sessionout.BookInfo{Title: book.Title, PagesHint: book.TotalPages}, nil
}
