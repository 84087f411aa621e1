package in

import (
	"context"

	sessiondto "lectern/internal/modules/session/dto"
	sessionin "lectern/internal/modules/session/port/in"
)

// TUIHandler maps the reader view's exits onto session triggers.
type TUIHandler struct {
	usecase sessionin.Usecase
}

func NewTUIHandler(usecase sessionin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Open(ctx context.Context, bookID int64) (sessiondto.SessionOutput, error) {
	return h.usecase.Open(ctx, sessiondto.OpenInput{BookID: bookID})
}

func (h TUIHandler) Next(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Turn(ctx, 1)
}

func (h TUIHandler) Prev(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Turn(ctx, -1)
}

func (h TUIHandler) Goto(ctx context.Context, page int) (sessiondto.SessionOutput, error) {
	return h.usecase.SetPage(ctx, page)
}

func (h TUIHandler) ResolveTotalPages(ctx context.Context, bookID int64, count int) (sessiondto.SessionOutput, error) {
	return h.usecase.ResolveTotalPages(ctx, bookID, count)
}

// Back flushes when the reader leaves the page view but keeps the session.
func (h TUIHandler) Back(ctx context.Context) (sessiondto.FlushOutput, error) {
	return h.usecase.Flush(ctx, sessionin.TriggerBack)
}

func (h TUIHandler) Quit(ctx context.Context) (sessiondto.CloseOutput, error) {
	return h.usecase.Close(ctx, sessionin.TriggerQuit)
}

// Signal closes the session after the process was interrupted.
func (h TUIHandler) Signal(ctx context.Context) (sessiondto.CloseOutput, error) {
	return h.usecase.Close(ctx, sessionin.TriggerSignal)
}

func (h TUIHandler) GetActive(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.GetActive(ctx)
}
