package in

import (
	"context"

	"lectern/internal/modules/reader/dto"
)

type Usecase interface {
	Load(ctx context.Context, input dto.LoadInput) (dto.DocumentOutput, error)
	Page(ctx context.Context, input dto.PageInput) (dto.PageOutput, error)
	OpenExternal(ctx context.Context, bookID int64) (dto.ExternalOutput, error)
}
