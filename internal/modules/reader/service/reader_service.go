package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"lectern/internal/modules/reader/domain"
	readerout "lectern/internal/modules/reader/port/out"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/logging"
)

type ReaderService struct {
	mode     domain.Mode
	books    readerout.BookResolver
	fetcher  readerout.DocumentFetcher
	cache    readerout.DocumentCache
	parser   readerout.DocumentParser
	launcher readerout.ExternalLauncher
	logger   *log.Logger

	// open holds the parsed document of the book most recently loaded, so
	// page reads do not go back to the cache and parser.
	mu   sync.Mutex
	open *openDocument
}

type openDocument struct {
	bookID int64
	doc    readerout.ParsedDocument
}

func NewReaderService(
	mode domain.Mode,
	books readerout.BookResolver,
	fetcher readerout.DocumentFetcher,
	cache readerout.DocumentCache,
	parser readerout.DocumentParser,
	launcher readerout.ExternalLauncher,
	logger *log.Logger,
) *ReaderService {
	return &ReaderService{
		mode:     mode,
		books:    books,
		fetcher:  fetcher,
		cache:    cache,
		parser:   parser,
		launcher: launcher,
		logger:   logging.OrDiscard(logger),
	}
}

// Load resolves the book's document and its authoritative page count. Fetch
// and parse failures are returned as *apperrors.DocumentUnavailableError;
// calling Load again with reload set is the retry.
func (s *ReaderService) Load(ctx context.Context, bookID int64, reload bool) (domain.BookRef, domain.Document, error) {
	book, err := s.books.Resolve(ctx, bookID)
	if err != nil {
		return domain.BookRef{}, domain.Document{}, err
	}
	if !book.HasDocument() {
		return book, domain.Document{BookID: book.ID, Title: book.Title, Mode: domain.ModeSimulated, TotalPages: book.TotalPagesHint}, nil
	}
	doc, size, cached, err := s.document(ctx, book, reload)
	if err != nil {
		return book, domain.Document{}, err
	}
	return book, domain.Document{
		BookID:     book.ID,
		Title:      book.Title,
		Mode:       s.mode,
		TotalPages: doc.NumPages(),
		Size:       size,
		Cached:     cached,
	}, nil
}

func (s *ReaderService) Page(ctx context.Context, bookID int64, number int) (domain.Page, int, error) {
	book, err := s.books.Resolve(ctx, bookID)
	if err != nil {
		return domain.Page{}, 0, err
	}
	if !book.HasDocument() {
		total := book.TotalPagesHint
		if number < 1 || (total > 0 && number > total) {
			return domain.Page{}, total, fmt.Errorf("%w: page %d outside 1..%d", apperrors.ErrInvalidInput, number, total)
		}
		return domain.SimulatedPage(book, number, total), total, nil
	}
	doc := s.current(book.ID)
	if doc == nil {
		if doc, _, _, err = s.document(ctx, book, false); err != nil {
			return domain.Page{}, 0, err
		}
	}
	total := doc.NumPages()
	if number < 1 || number > total {
		return domain.Page{}, total, fmt.Errorf("%w: page %d outside 1..%d", apperrors.ErrInvalidInput, number, total)
	}
	text, err := doc.PageText(number)
	if err != nil {
		return domain.Page{}, total, &apperrors.DocumentUnavailableError{BookID: book.ID, Err: err}
	}
	return domain.Page{Number: number, Text: text}, total, nil
}

// OpenExternal makes sure the document is cached locally and hands the file
// to the system viewer.
func (s *ReaderService) OpenExternal(ctx context.Context, bookID int64) (string, bool, error) {
	book, err := s.books.Resolve(ctx, bookID)
	if err != nil {
		return "", false, err
	}
	if !book.HasDocument() {
		return "", false, &apperrors.DocumentUnavailableError{BookID: book.ID, Err: errors.New("book has no digital document")}
	}
	if _, _, _, err := s.document(ctx, book, false); err != nil {
		return "", false, err
	}
	path := s.cache.Path(book.ID)
	if s.launcher == nil {
		return path, false, nil
	}
	if err := s.launcher.Open(ctx, path); err != nil {
		return path, false, err
	}
	return path, true, nil
}

func (s *ReaderService) current(bookID int64) readerout.ParsedDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == nil || s.open.bookID != bookID {
		return nil
	}
	return s.open.doc
}

func (s *ReaderService) remember(bookID int64, doc readerout.ParsedDocument) {
	s.mu.Lock()
	s.open = &openDocument{bookID: bookID, doc: doc}
	s.mu.Unlock()
}

// document returns the parsed document, the payload size and whether it came
// from the cache. The result becomes the open document for later page reads.
func (s *ReaderService) document(ctx context.Context, book domain.BookRef, reload bool) (readerout.ParsedDocument, int, bool, error) {
	if !reload && s.cache != nil {
		payload, err := s.cache.Load(ctx, book.ID)
		switch {
		case err == nil:
			doc, parseErr := s.parser.Parse(payload)
			if parseErr == nil && doc.NumPages() > 0 {
				s.remember(book.ID, doc)
				return doc, len(payload), true, nil
			}
			s.logger.Warn("cached document unreadable, fetching again", "book", book.ID, "err", parseErr)
			if evictErr := s.cache.Evict(ctx, book.ID); evictErr != nil {
				s.logger.Warn("evict cached document", "book", book.ID, "err", evictErr)
			}
		case !errors.Is(err, apperrors.ErrNotFound):
			s.logger.Warn("read cached document", "book", book.ID, "err", err)
		}
	}

	payload, err := s.fetch(ctx, book)
	if err != nil {
		return nil, 0, false, &apperrors.DocumentUnavailableError{BookID: book.ID, Err: err}
	}
	if len(payload) == 0 {
		return nil, 0, false, &apperrors.DocumentUnavailableError{BookID: book.ID, Err: errors.New("document is empty")}
	}
	doc, err := s.parser.Parse(payload)
	if err != nil {
		return nil, 0, false, &apperrors.DocumentUnavailableError{BookID: book.ID, Err: err}
	}
	total := doc.NumPages()
	if total <= 0 {
		return nil, 0, false, &apperrors.DocumentUnavailableError{BookID: book.ID, Err: errors.New("document has no pages")}
	}
	if s.cache != nil {
		if _, err := s.cache.Store(ctx, book.ID, payload); err != nil {
			s.logger.Warn("cache document", "book", book.ID, "err", err)
		}
	}
	s.logger.Debug("document loaded", "book", book.ID, "mode", s.mode, "pages", total, "bytes", len(payload))
	s.remember(book.ID, doc)
	return doc, len(payload), false, nil
}

func (s *ReaderService) fetch(ctx context.Context, book domain.BookRef) ([]byte, error) {
	switch s.mode {
	case domain.ModeDirect:
		return s.fetcher.FetchURL(ctx, book.DocumentURL)
	default:
		return s.fetcher.FetchProxy(ctx, book.ID)
	}
}
