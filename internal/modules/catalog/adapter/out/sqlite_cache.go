package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lectern/internal/modules/catalog/domain"
	catalogout "lectern/internal/modules/catalog/port/out"
	apperrors "lectern/internal/platform/errors"

	_ "modernc.org/sqlite"
)

type SQLiteBookCache struct {
	db *sql.DB
}

func NewSQLiteBookCache(dbPath string) (catalogout.BookCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	cache := &SQLiteBookCache{db: db}
	if err := cache.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

func (s *SQLiteBookCache) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS books (
  id INTEGER PRIMARY KEY,
  title TEXT NOT NULL,
  total_pages INTEGER NOT NULL,
  synopsis TEXT,
  document_url TEXT,
  signed_url TEXT,
  cover_url TEXT,
  publisher TEXT,
  authors TEXT NOT NULL,
  categories TEXT NOT NULL,
  languages TEXT NOT NULL,
  cached_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

func (s *SQLiteBookCache) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM books`); err != nil {
		return fmt.Errorf("reset books: %w", err)
	}
	return nil
}

type cachedAuthor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (s *SQLiteBookCache) UpsertBook(ctx context.Context, book domain.Book) error {
	const stmt = `
INSERT INTO books (id, title, total_pages, synopsis, document_url, signed_url, cover_url, publisher, authors, categories, languages, cached_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  total_pages=excluded.total_pages,
  synopsis=excluded.synopsis,
  document_url=excluded.document_url,
  signed_url=excluded.signed_url,
  cover_url=excluded.cover_url,
  publisher=excluded.publisher,
  authors=excluded.authors,
  categories=excluded.categories,
  languages=excluded.languages,
  cached_at=excluded.cached_at;
`
	authors := make([]cachedAuthor, 0, len(book.Authors))
	for _, author := range book.Authors {
		authors = append(authors, cachedAuthor{ID: author.ID, Name: author.Name})
	}
	authorsJSON, err := marshalList(authors)
	if err != nil {
		return err
	}
	categoriesJSON, err := marshalList(book.Categories)
	if err != nil {
		return err
	}
	languagesJSON, err := marshalList(book.Languages)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, stmt,
		book.ID,
		book.Title,
		book.TotalPages,
		book.Synopsis,
		book.DocumentURL,
		book.SignedURL,
		book.CoverURL,
		book.Publisher,
		authorsJSON,
		categoriesJSON,
		languagesJSON,
		book.CachedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert book %d: %w", book.ID, err)
	}
	return nil
}

func (s *SQLiteBookCache) FindBook(ctx context.Context, id int64) (domain.Book, error) {
	const query = `
SELECT id, title, total_pages, synopsis, document_url, signed_url, cover_url, publisher, authors, categories, languages, cached_at
FROM books WHERE id = ?;
`
	var (
		book                domain.Book
		synopsis, publisher sql.NullString
		docURL, signedURL   sql.NullString
		coverURL            sql.NullString
		authorsJSON         string
		categoriesJSON      string
		langsJSON           string
		cachedAt            string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.TotalPages,
		&synopsis,
		&docURL,
		&signedURL,
		&coverURL,
		&publisher,
		&authorsJSON,
		&categoriesJSON,
		&langsJSON,
		&cachedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Book{}, apperrors.ErrNotFound
		}
		return domain.Book{}, fmt.Errorf("find cached book %d: %w", id, err)
	}
	book.Synopsis = synopsis.String
	book.DocumentURL = docURL.String
	book.SignedURL = signedURL.String
	book.CoverURL = coverURL.String
	book.Publisher = publisher.String

	authors := []cachedAuthor{}
	if err := json.Unmarshal([]byte(authorsJSON), &authors); err != nil {
		return domain.Book{}, fmt.Errorf("decode cached authors: %w", err)
	}
	for _, author := range authors {
		book.Authors = append(book.Authors, domain.Author{ID: author.ID, Name: author.Name})
	}
	if err := json.Unmarshal([]byte(categoriesJSON), &book.Categories); err != nil {
		return domain.Book{}, fmt.Errorf("decode cached categories: %w", err)
	}
	if err := json.Unmarshal([]byte(langsJSON), &book.Languages); err != nil {
		return domain.Book{}, fmt.Errorf("decode cached languages: %w", err)
	}
	book.CachedAt, _ = time.Parse(time.RFC3339, cachedAt)
	return book, nil
}

func (s *SQLiteBookCache) Close() error {
	return s.db.Close()
}

func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode cached list: %w", err)
	}
	return string(raw), nil
}
