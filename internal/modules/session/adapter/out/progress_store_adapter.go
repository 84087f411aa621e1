package out

import (
	"context"

	progressdto "lectern/internal/modules/progress/dto"
	progressin "lectern/internal/modules/progress/port/in"
	"lectern/internal/modules/session/domain"
	sessionout "lectern/internal/modules/session/port/out"
)

// ProgressStoreAdapter backs reading sessions with the progress module.
type ProgressStoreAdapter struct {
	progress progressin.Usecase
}

func NewProgressStoreAdapter(progress progressin.Usecase) sessionout.ProgressStore {
	return &ProgressStoreAdapter{progress: progress}
}

func (a *ProgressStoreAdapter) Lookup(ctx context.Context, userID, bookID int64) (sessionout.StoredProgress, error) {
	record, err := a.progress.Lookup(ctx, progressdto.LookupInput{UserID: userID, BookID: bookID})
	if err != nil {
		return sessionout.StoredProgress{}, err
	}
	return toStored(record), nil
}

func (a *ProgressStoreAdapter) Create(ctx context.Context, bookID int64) (sessionout.StoredProgress, error) {
	record, err := a.progress.Create(ctx, progressdto.CreateInput{BookID: bookID, Page: 1, Status: string(domain.StatusInProgress)})
	if err != nil {
		return sessionout.StoredProgress{}, err
	}
	return toStored(record), nil
}

func (a *ProgressStoreAdapter) Update(ctx context.Context, id string, page int, status domain.Status) error {
	return a.progress.Update(ctx, progressdto.UpdateInput{ID: id, Page: page, Status: string(status)})
}

func toStored(record progressdto.RecordOutput) sessionout.StoredProgress {
	return sessionout.StoredProgress{ID: record.ID, Page: record.Page, Status: domain.Status(record.Status)}
}
