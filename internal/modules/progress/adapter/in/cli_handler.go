package in

import (
	"context"

	"lectern/internal/modules/progress/dto"
	progressin "lectern/internal/modules/progress/port/in"
)

type CLIHandler struct {
	usecase progressin.Usecase
}

func NewCLIHandler(usecase progressin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Stats(ctx context.Context) (dto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

func (h CLIHandler) InProgress(ctx context.Context) ([]dto.RecordOutput, error) {
	return h.usecase.InProgress(ctx)
}

func (h CLIHandler) Completed(ctx context.Context) ([]dto.RecordOutput, error) {
	return h.usecase.Completed(ctx)
}
