package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lectern/internal/modules/session/domain"
	sessionout "lectern/internal/modules/session/port/out"
	apperrors "lectern/internal/platform/errors"
)

type activeSessionFile struct {
	SchemaVersion int                   `json:"schema_version"`
	Session       domain.ReadingSession `json:"session"`
}

type FileActiveSessionStore struct {
	path string
}

func NewFileActiveSessionStore(path string) sessionout.ActiveSessionStore {
	return &FileActiveSessionStore{path: path}
}

// SaveActive writes through a temp file so a crash never leaves a torn
// session behind.
func (s *FileActiveSessionStore) SaveActive(_ context.Context, session domain.ReadingSession) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create active session dir: %w", err)
	}
	payload, err := json.MarshalIndent(activeSessionFile{SchemaVersion: domain.SchemaVersion, Session: session}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write active session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace active session: %w", err)
	}
	return nil
}

func (s *FileActiveSessionStore) LoadActive(_ context.Context) (domain.ReadingSession, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ReadingSession{}, apperrors.ErrNoActiveSession
		}
		return domain.ReadingSession{}, fmt.Errorf("read active session: %w", err)
	}
	file := activeSessionFile{}
	if err := json.Unmarshal(payload, &file); err != nil {
		return domain.ReadingSession{}, fmt.Errorf("decode active session: %w", err)
	}
	if file.SchemaVersion != domain.SchemaVersion {
		return domain.ReadingSession{}, fmt.Errorf("active session schema %d is not supported", file.SchemaVersion)
	}
	if file.Session.BookID == 0 || file.Session.LocalID == "" {
		return domain.ReadingSession{}, apperrors.ErrNoActiveSession
	}
	return file.Session, nil
}

func (s *FileActiveSessionStore) ClearActive(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}
