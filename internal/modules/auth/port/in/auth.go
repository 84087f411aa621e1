package in

import (
	"context"

	"lectern/internal/modules/auth/dto"
)

type Usecase interface {
	Login(ctx context.Context, input dto.LoginInput) (dto.LoginOutput, error)
	Register(ctx context.Context, input dto.RegisterInput) (dto.UserOutput, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (dto.StatusOutput, error)
	CurrentUser(ctx context.Context) (dto.UserOutput, error)
	// Token returns the bearer token of a valid session.
	Token(ctx context.Context) (string, error)
}
