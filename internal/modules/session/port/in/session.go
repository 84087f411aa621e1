package in

import (
	"context"

	"lectern/internal/modules/session/dto"
)

// Exit triggers passed to Flush and Close.
const (
	TriggerBack   = "back"
	TriggerQuit   = "quit"
	TriggerSignal = "signal"
	TriggerSwitch = "switch"
	TriggerClose  = "close"
)

type Usecase interface {
	// Open resolves or creates the session for a book. When the progress
	// store cannot be reached it returns a usable offline session together
	// with an *apperrors.SessionInitError.
	Open(ctx context.Context, input dto.OpenInput) (dto.SessionOutput, error)
	Turn(ctx context.Context, delta int) (dto.SessionOutput, error)
	SetPage(ctx context.Context, page int) (dto.SessionOutput, error)
	ResolveTotalPages(ctx context.Context, bookID int64, count int) (dto.SessionOutput, error)
	Flush(ctx context.Context, trigger string) (dto.FlushOutput, error)
	Close(ctx context.Context, trigger string) (dto.CloseOutput, error)
	GetActive(ctx context.Context) (dto.SessionOutput, error)
}
