package out

import (
	"context"

	authin "lectern/internal/modules/auth/port/in"
	sessionout "lectern/internal/modules/session/port/out"
)

type IdentityAdapter struct {
	auth authin.Usecase
}

func NewIdentityAdapter(auth authin.Usecase) sessionout.IdentityPort {
	return &IdentityAdapter{auth: auth}
}

func (a *IdentityAdapter) CurrentUserID(ctx context.Context) (int64, error) {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}
