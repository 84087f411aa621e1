package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"lectern/internal/modules/catalog/domain"
	catalogout "lectern/internal/modules/catalog/port/out"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/logging"
)

const (
	DefaultPageSize  = 20
	DefaultListLimit = 10
	maxLimit         = 100
)

type CatalogService struct {
	clock   clock.Clock
	gateway catalogout.Gateway
	cache   catalogout.BookCache
	logger  *log.Logger
}

func NewCatalogService(clock clock.Clock, gateway catalogout.Gateway, cache catalogout.BookCache, logger *log.Logger) *CatalogService {
	return &CatalogService{clock: clock, gateway: gateway, cache: cache, logger: logging.OrDiscard(logger)}
}

// ListBooks fetches one page of the catalog and the total count together. A
// failing count degrades to zero pages rather than failing the listing.
func (s *CatalogService) ListBooks(ctx context.Context, page, limit int) (domain.Page, error) {
	if page < 1 {
		page = 1
	}
	limit = clampLimit(limit, DefaultPageSize)

	var (
		books []domain.Book
		count int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		books, err = s.gateway.ListBooks(gctx, (page-1)*limit, limit)
		return err
	})
	g.Go(func() error {
		total, err := s.gateway.CountBooks(gctx)
		if err != nil {
			s.logger.Warn("book count unavailable", "err", err)
			return nil
		}
		count = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Page{}, err
	}
	for _, book := range books {
		s.remember(ctx, book)
	}
	return domain.NewPage(books, count, page, limit), nil
}

// GetBook returns the backend's copy of a book, falling back to the local
// cache when the backend cannot be reached. The bool reports a cache hit.
func (s *CatalogService) GetBook(ctx context.Context, id int64) (domain.Book, bool, error) {
	if id <= 0 {
		return domain.Book{}, false, fmt.Errorf("%w: book id must be positive", apperrors.ErrInvalidInput)
	}
	book, err := s.gateway.GetBook(ctx, id)
	if err == nil {
		s.remember(ctx, book)
		return book, false, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrUnauthorized) || errors.Is(err, apperrors.ErrNotAuthenticated) || s.cache == nil {
		return domain.Book{}, false, err
	}
	cached, cacheErr := s.cache.FindBook(ctx, id)
	if cacheErr != nil {
		return domain.Book{}, false, err
	}
	s.logger.Warn("backend unavailable, using cached book", "book", id, "cached_at", cached.CachedAt, "err", err)
	return cached, true, nil
}

func (s *CatalogService) BooksByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Book, error) {
	if authorID <= 0 {
		return nil, fmt.Errorf("%w: author id must be positive", apperrors.ErrInvalidInput)
	}
	return s.gateway.BooksByAuthor(ctx, authorID, clampLimit(limit, DefaultListLimit))
}

func (s *CatalogService) Recommendations(ctx context.Context, limit int) ([]domain.Book, error) {
	return s.gateway.Recommendations(ctx, clampLimit(limit, DefaultListLimit))
}

func (s *CatalogService) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Reset(ctx)
}

func (s *CatalogService) remember(ctx context.Context, book domain.Book) {
	if s.cache == nil {
		return
	}
	if err := book.Validate(); err != nil {
		s.logger.Debug("not caching book", "err", err)
		return
	}
	book.CachedAt = s.clock.Now()
	if err := s.cache.UpsertBook(ctx, book); err != nil {
		s.logger.Warn("cache book", "book", book.ID, "err", err)
	}
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
