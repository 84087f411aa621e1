package in

import (
	"context"

	sessiondto "lectern/internal/modules/session/dto"
	sessionin "lectern/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Open(ctx context.Context, bookID int64) (sessiondto.SessionOutput, error) {
	return h.usecase.Open(ctx, sessiondto.OpenInput{BookID: bookID})
}

func (h CLIHandler) Next(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Turn(ctx, 1)
}

func (h CLIHandler) Prev(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Turn(ctx, -1)
}

func (h CLIHandler) Goto(ctx context.Context, page int) (sessiondto.SessionOutput, error) {
	return h.usecase.SetPage(ctx, page)
}

func (h CLIHandler) ResolveTotalPages(ctx context.Context, bookID int64, count int) (sessiondto.SessionOutput, error) {
	return h.usecase.ResolveTotalPages(ctx, bookID, count)
}

func (h CLIHandler) Flush(ctx context.Context) (sessiondto.FlushOutput, error) {
	return h.usecase.Flush(ctx, sessionin.TriggerClose)
}

func (h CLIHandler) Close(ctx context.Context) (sessiondto.CloseOutput, error) {
	return h.usecase.Close(ctx, sessionin.TriggerClose)
}

func (h CLIHandler) GetActive(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.GetActive(ctx)
}
