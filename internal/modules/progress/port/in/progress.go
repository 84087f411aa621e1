package in

import (
	"context"

	"lectern/internal/modules/progress/dto"
)

type Usecase interface {
	Lookup(ctx context.Context, input dto.LookupInput) (dto.RecordOutput, error)
	Create(ctx context.Context, input dto.CreateInput) (dto.RecordOutput, error)
	Update(ctx context.Context, input dto.UpdateInput) error
	InProgress(ctx context.Context) ([]dto.RecordOutput, error)
	Completed(ctx context.Context) ([]dto.RecordOutput, error)
	Stats(ctx context.Context) (dto.StatsOutput, error)
}
