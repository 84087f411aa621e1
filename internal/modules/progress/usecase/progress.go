package usecase

import (
	"context"

	"lectern/internal/modules/progress/domain"
	"lectern/internal/modules/progress/dto"
	progressin "lectern/internal/modules/progress/port/in"
	"lectern/internal/modules/progress/service"
)

type Interactor struct {
	svc *service.ProgressService
}

func NewInteractor(svc *service.ProgressService) progressin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Lookup(ctx context.Context, input dto.LookupInput) (dto.RecordOutput, error) {
	record, err := i.svc.Lookup(ctx, input.UserID, input.BookID)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	return toOutput(record), nil
}

func (i *Interactor) Create(ctx context.Context, input dto.CreateInput) (dto.RecordOutput, error) {
	status, err := parseOptionalStatus(input.Status)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	record, err := i.svc.Create(ctx, input.BookID, input.Page, status)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	return toOutput(record), nil
}

func (i *Interactor) Update(ctx context.Context, input dto.UpdateInput) error {
	status, err := parseOptionalStatus(input.Status)
	if err != nil {
		return err
	}
	if status == "" {
		status = domain.StatusInProgress
	}
	return i.svc.Update(ctx, input.ID, input.Page, status)
}

func (i *Interactor) InProgress(ctx context.Context) ([]dto.RecordOutput, error) {
	return i.byStatus(ctx, domain.StatusInProgress)
}

func (i *Interactor) Completed(ctx context.Context) ([]dto.RecordOutput, error) {
	return i.byStatus(ctx, domain.StatusCompleted)
}

func (i *Interactor) byStatus(ctx context.Context, status domain.Status) ([]dto.RecordOutput, error) {
	records, err := i.svc.ByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecordOutput, 0, len(records))
	for _, record := range records {
		out = append(out, toOutput(record))
	}
	return out, nil
}

func (i *Interactor) Stats(ctx context.Context) (dto.StatsOutput, error) {
	stats := i.svc.Stats(ctx)
	return dto.StatsOutput{Completed: stats.Completed, InProgress: stats.InProgress, PagesRead: stats.PagesRead}, nil
}

func parseOptionalStatus(raw string) (domain.Status, error) {
	if raw == "" {
		return "", nil
	}
	return domain.ParseStatus(raw)
}

func toOutput(record domain.Record) dto.RecordOutput {
	return dto.RecordOutput{
		ID:             record.ID,
		UserID:         record.UserID,
		BookID:         record.BookID,
		Page:           record.Page,
		Status:         string(record.Status),
		BookTitle:      record.BookTitle,
		BookTotalPages: record.BookTotalPages,
		Percent:        record.Percent,
		DocumentURL:    record.DocumentURL,
		CoverURL:       record.CoverURL,
	}
}
