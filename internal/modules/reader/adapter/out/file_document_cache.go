package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	readerout "lectern/internal/modules/reader/port/out"
	apperrors "lectern/internal/platform/errors"
)

type FileDocumentCache struct {
	dir string
}

func NewFileDocumentCache(dir string) readerout.DocumentCache {
	return &FileDocumentCache{dir: dir}
}

func (c *FileDocumentCache) Path(bookID int64) string {
	return filepath.Join(c.dir, strconv.FormatInt(bookID, 10)+".pdf")
}

func (c *FileDocumentCache) Load(_ context.Context, bookID int64) ([]byte, error) {
	payload, err := os.ReadFile(c.Path(bookID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("read cached document: %w", err)
	}
	return payload, nil
}

func (c *FileDocumentCache) Store(_ context.Context, bookID int64, payload []byte) (string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create document cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, "download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp document: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp document: %w", err)
	}
	path := c.Path(bookID)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}
	return path, nil
}

func (c *FileDocumentCache) Evict(_ context.Context, bookID int64) error {
	if err := os.Remove(c.Path(bookID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("evict document: %w", err)
	}
	return nil
}
