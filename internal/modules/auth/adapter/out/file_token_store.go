package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lectern/internal/modules/auth/domain"
	authout "lectern/internal/modules/auth/port/out"
	apperrors "lectern/internal/platform/errors"
)

type FileTokenStore struct {
	path string
}

func NewFileTokenStore(path string) authout.TokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Save(_ context.Context, token domain.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	payload, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Load(_ context.Context) (domain.Token, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Token{}, apperrors.ErrNotFound
		}
		return domain.Token{}, fmt.Errorf("read token: %w", err)
	}
	token := domain.Token{}
	if err := json.Unmarshal(payload, &token); err != nil {
		return domain.Token{}, fmt.Errorf("decode token: %w", err)
	}
	return token, nil
}

func (s *FileTokenStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
