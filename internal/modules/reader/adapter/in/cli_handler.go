package in

import (
	"context"

	"lectern/internal/modules/reader/dto"
	readerin "lectern/internal/modules/reader/port/in"
)

type CLIHandler struct {
	usecase readerin.Usecase
}

func NewCLIHandler(usecase readerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Load(ctx context.Context, bookID int64, reload bool) (dto.DocumentOutput, error) {
	return h.usecase.Load(ctx, dto.LoadInput{BookID: bookID, Reload: reload})
}

func (h CLIHandler) Page(ctx context.Context, bookID int64, page int) (dto.PageOutput, error) {
	return h.usecase.Page(ctx, dto.PageInput{BookID: bookID, Page: page})
}

func (h CLIHandler) OpenExternal(ctx context.Context, bookID int64) (dto.ExternalOutput, error) {
	return h.usecase.OpenExternal(ctx, bookID)
}
