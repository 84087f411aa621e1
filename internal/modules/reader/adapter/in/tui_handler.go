package in

import (
	"context"

	"lectern/internal/modules/reader/dto"
	readerin "lectern/internal/modules/reader/port/in"
)

// TUIHandler is the reader surface used by the bubbletea reader view.
type TUIHandler struct {
	usecase readerin.Usecase
}

func NewTUIHandler(usecase readerin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Load(ctx context.Context, bookID int64, reload bool) (dto.DocumentOutput, error) {
	return h.usecase.Load(ctx, dto.LoadInput{BookID: bookID, Reload: reload})
}

func (h TUIHandler) Page(ctx context.Context, bookID int64, page int) (dto.PageOutput, error) {
	return h.usecase.Page(ctx, dto.PageInput{BookID: bookID, Page: page})
}

func (h TUIHandler) OpenExternal(ctx context.Context, bookID int64) (dto.ExternalOutput, error) {
	return h.usecase.OpenExternal(ctx, bookID)
}
