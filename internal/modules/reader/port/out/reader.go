package out

import (
	"context"

	"lectern/internal/modules/reader/domain"
)

type BookResolver interface {
	Resolve(ctx context.Context, bookID int64) (domain.BookRef, error)
}

type DocumentFetcher interface {
	// FetchProxy downloads the document through the authenticated backend.
	FetchProxy(ctx context.Context, bookID int64) ([]byte, error)
	FetchURL(ctx context.Context, rawURL string) ([]byte, error)
}

// DocumentCache returns apperrors.ErrNotFound on a miss.
type DocumentCache interface {
	Load(ctx context.Context, bookID int64) ([]byte, error)
	Store(ctx context.Context, bookID int64, payload []byte) (string, error)
	Evict(ctx context.Context, bookID int64) error
	Path(bookID int64) string
}

// DocumentParser parses a payload once; the returned document serves any
// number of page reads.
type DocumentParser interface {
	Parse(payload []byte) (ParsedDocument, error)
}

type ParsedDocument interface {
	NumPages() int
	PageText(page int) (string, error)
}

type ExternalLauncher interface {
	Open(ctx context.Context, target string) error
}
