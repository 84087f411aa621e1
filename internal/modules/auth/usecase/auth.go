package usecase

import (
	"context"
	"errors"

	"lectern/internal/modules/auth/domain"
	"lectern/internal/modules/auth/dto"
	authin "lectern/internal/modules/auth/port/in"
	"lectern/internal/modules/auth/service"
	apperrors "lectern/internal/platform/errors"
)

type Interactor struct {
	svc *service.AuthService
}

func NewInteractor(svc *service.AuthService) *Interactor {
	return &Interactor{svc: svc}
}

var _ authin.Usecase = (*Interactor)(nil)

func (i *Interactor) Login(ctx context.Context, input dto.LoginInput) (dto.LoginOutput, error) {
	token, err := i.svc.Login(ctx, domain.Credentials{Email: input.Email, Password: input.Password})
	if err != nil {
		return dto.LoginOutput{}, err
	}
	return dto.LoginOutput{TokenType: token.TokenType, ExpiresAt: token.ExpiresAt}, nil
}

func (i *Interactor) Register(ctx context.Context, input dto.RegisterInput) (dto.UserOutput, error) {
	user, err := i.svc.Register(ctx, domain.Registration{
		Registration: input.Registration,
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Password:     input.Password,
	})
	if err != nil {
		return dto.UserOutput{}, err
	}
	return toUserOutput(user), nil
}

func (i *Interactor) Logout(ctx context.Context) error {
	return i.svc.Logout(ctx)
}

func (i *Interactor) Status(ctx context.Context) (dto.StatusOutput, error) {
	token, err := i.svc.Session(ctx)
	if errors.Is(err, apperrors.ErrNotAuthenticated) {
		return dto.StatusOutput{}, nil
	}
	if err != nil {
		return dto.StatusOutput{}, err
	}
	return dto.StatusOutput{Authenticated: true, ExpiresAt: token.ExpiresAt}, nil
}

func (i *Interactor) CurrentUser(ctx context.Context) (dto.UserOutput, error) {
	user, err := i.svc.CurrentUser(ctx)
	if err != nil {
		return dto.UserOutput{}, err
	}
	return toUserOutput(user), nil
}

func (i *Interactor) Token(ctx context.Context) (string, error) {
	token, err := i.svc.Session(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// Invalidate is installed as the HTTP client's unauthorized hook.
func (i *Interactor) Invalidate() {
	i.svc.Invalidate(context.Background())
}

func toUserOutput(user domain.User) dto.UserOutput {
	return dto.UserOutput{
		ID:           user.ID,
		Registration: user.Registration,
		Name:         user.Name,
		Email:        user.Email,
		Phone:        user.Phone,
		State:        user.State,
	}
}
