package usecase_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	catalogout "lectern/internal/modules/catalog/adapter/out"
	"lectern/internal/modules/catalog/domain"
	"lectern/internal/modules/catalog/dto"
	"lectern/internal/modules/catalog/service"
	"lectern/internal/modules/catalog/usecase"
	"lectern/internal/platform/clock"
	apperrors "lectern/internal/platform/errors"

	_ "modernc.org/sqlite"
)

type fakeGateway struct {
	mu       sync.Mutex
	books    map[int64]domain.Book
	down     bool
	countErr error
	skips    []int
}

func (f *fakeGateway) ListBooks(_ context.Context, skip, limit int) ([]domain.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skips = append(f.skips, skip)
	out := []domain.Book{}
	for id := int64(skip + 1); id <= int64(skip+limit); id++ {
		if book, ok := f.books[id]; ok {
			out = append(out, book)
		}
	}
	return out, nil
}

func (f *fakeGateway) CountBooks(context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.books), nil
}

func (f *fakeGateway) GetBook(_ context.Context, id int64) (domain.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return domain.Book{}, errors.New("dial tcp: connection refused")
	}
	book, ok := f.books[id]
	if !ok {
		return domain.Book{}, apperrors.ErrNotFound
	}
	return book, nil
}

func (f *fakeGateway) BooksByAuthor(_ context.Context, authorID int64, limit int) ([]domain.Book, error) {
	out := []domain.Book{}
	for _, book := range f.books {
		for _, author := range book.Authors {
			if author.ID == authorID && len(out) < limit {
				out = append(out, book)
			}
		}
	}
	return out, nil
}

func (f *fakeGateway) Recommendations(_ context.Context, limit int) ([]domain.Book, error) {
	out := []domain.Book{}
	for id := int64(1); id <= int64(limit); id++ {
		if book, ok := f.books[id]; ok {
			out = append(out, book)
		}
	}
	return out, nil
}

func seedBooks(n int) map[int64]domain.Book {
	books := map[int64]domain.Book{}
	for i := 1; i <= n; i++ {
		id := int64(i)
		books[id] = domain.Book{
			ID:         id,
			Title:      "Book",
			TotalPages: 100 + i,
			Authors:    []domain.Author{{ID: int64(i%2 + 1), Name: "Autor"}},
			Categories: []string{"Novela"},
		}
	}
	return books
}

var fixedNow = clock.Fixed(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

func TestListBooksPaginatesAndCaches(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "lectern.db")
	cache, err := catalogout.NewSQLiteBookCache(dbPath)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	gw := &fakeGateway{books: seedBooks(45)}
	uc := usecase.NewInteractor(service.NewCatalogService(fixedNow, gw, cache, nil))

	page, err := uc.ListBooks(context.Background(), dto.ListBooksInput{Page: 3, Limit: 20})
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if page.Count != 45 || page.TotalPages != 3 || page.Page != 3 || len(page.Books) != 5 {
		t.Fatalf("unexpected page %+v", page)
	}
	if gw.skips[0] != 40 {
		t.Fatalf("expected skip 40, got %v", gw.skips)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		t.Fatalf("count cached books: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected five cached books, got %d", count)
	}
}

func TestListBooksSurvivesCountFailure(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{books: seedBooks(3), countErr: errors.New("timeout")}
	uc := usecase.NewInteractor(service.NewCatalogService(fixedNow, gw, nil, nil))
	page, err := uc.ListBooks(context.Background(), dto.ListBooksInput{})
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if page.Count != 0 || page.TotalPages != 0 || len(page.Books) != 3 || page.Page != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestGetBookFallsBackToCache(t *testing.T) {
	t.Parallel()
	cache, err := catalogout.NewSQLiteBookCache(filepath.Join(t.TempDir(), "lectern.db"))
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	gw := &fakeGateway{books: seedBooks(2)}
	uc := usecase.NewInteractor(service.NewCatalogService(fixedNow, gw, cache, nil))

	fresh, err := uc.GetBook(context.Background(), 2)
	if err != nil || fresh.FromCache {
		t.Fatalf("expected backend copy, got %+v err=%v", fresh, err)
	}

	gw.mu.Lock()
	gw.down = true
	gw.mu.Unlock()
	cached, err := uc.GetBook(context.Background(), 2)
	if err != nil {
		t.Fatalf("expected cached copy: %v", err)
	}
	if !cached.FromCache || cached.TotalPages != 102 || len(cached.Authors) != 1 || cached.Categories[0] != "Novela" {
		t.Fatalf("unexpected cached book %+v", cached)
	}
	if _, err := uc.GetBook(context.Background(), 1); err == nil {
		t.Fatalf("uncached book should fail while backend is down")
	}

	if err := uc.ClearCache(context.Background()); err != nil {
		t.Fatalf("clear cache: %v", err)
	}
	if _, err := uc.GetBook(context.Background(), 2); err == nil {
		t.Fatalf("cleared cache should not serve the book")
	}
}

func TestGetBookNotFoundSkipsCache(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewCatalogService(fixedNow, &fakeGateway{books: seedBooks(1)}, nil, nil))
	if _, err := uc.GetBook(context.Background(), 9); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := uc.GetBook(context.Background(), 0); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAuthorAndRecommendationListings(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewCatalogService(fixedNow, &fakeGateway{books: seedBooks(6)}, nil, nil))
	byAuthor, err := uc.BooksByAuthor(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("books by author: %v", err)
	}
	if len(byAuthor) != 3 {
		t.Fatalf("expected three books by author 1, got %d", len(byAuthor))
	}
	if _, err := uc.BooksByAuthor(context.Background(), 0, 5); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid author id, got %v", err)
	}
	recs, err := uc.Recommendations(context.Background(), 4)
	if err != nil || len(recs) != 4 {
		t.Fatalf("recommendations: %d err=%v", len(recs), err)
	}
}
