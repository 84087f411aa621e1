package usecase

import (
	"context"

	"lectern/internal/modules/reader/domain"
	"lectern/internal/modules/reader/dto"
	readerin "lectern/internal/modules/reader/port/in"
	"lectern/internal/modules/reader/service"
)

type Interactor struct {
	svc *service.ReaderService
}

func NewInteractor(svc *service.ReaderService) readerin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Load(ctx context.Context, input dto.LoadInput) (dto.DocumentOutput, error) {
	book, doc, err := i.svc.Load(ctx, input.BookID, input.Reload)
	if err != nil {
		return dto.DocumentOutput{}, err
	}
	return dto.DocumentOutput{
		BookID:     doc.BookID,
		Title:      doc.Title,
		Authors:    book.Authors,
		Mode:       string(doc.Mode),
		TotalPages: doc.TotalPages,
		Size:       doc.Size,
		Cached:     doc.Cached,
		Simulated:  doc.Mode == domain.ModeSimulated,
	}, nil
}

func (i *Interactor) Page(ctx context.Context, input dto.PageInput) (dto.PageOutput, error) {
	page, total, err := i.svc.Page(ctx, input.BookID, input.Page)
	if err != nil {
		return dto.PageOutput{}, err
	}
	return dto.PageOutput{
		BookID:     input.BookID,
		Number:     page.Number,
		TotalPages: total,
		Text:       page.Text,
		Simulated:  page.Simulated,
	}, nil
}

func (i *Interactor) OpenExternal(ctx context.Context, bookID int64) (dto.ExternalOutput, error) {
	path, launched, err := i.svc.OpenExternal(ctx, bookID)
	if err != nil {
		return dto.ExternalOutput{}, err
	}
	return dto.ExternalOutput{BookID: bookID, Path: path, Launched: launched}, nil
}
