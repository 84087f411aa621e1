package in

import (
	"context"

	"lectern/internal/modules/auth/dto"
	authin "lectern/internal/modules/auth/port/in"
)

type CLIHandler struct {
	usecase authin.Usecase
}

func NewCLIHandler(usecase authin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Login(ctx context.Context, email, password string) (dto.LoginOutput, error) {
	return h.usecase.Login(ctx, dto.LoginInput{Email: email, Password: password})
}

func (h CLIHandler) Register(ctx context.Context, input dto.RegisterInput) (dto.UserOutput, error) {
	return h.usecase.Register(ctx, input)
}

func (h CLIHandler) Logout(ctx context.Context) error {
	return h.usecase.Logout(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) WhoAmI(ctx context.Context) (dto.UserOutput, error) {
	return h.usecase.CurrentUser(ctx)
}
