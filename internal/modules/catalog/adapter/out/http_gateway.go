package out

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"lectern/internal/modules/catalog/domain"
	catalogout "lectern/internal/modules/catalog/port/out"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/httpapi"
)

type HTTPGateway struct {
	client *httpapi.Client
}

func NewHTTPGateway(client *httpapi.Client) catalogout.Gateway {
	return &HTTPGateway{client: client}
}

type libro struct {
	ID          int64   `json:"idLibro"`
	Title       string  `json:"titulo"`
	TotalPages  *int    `json:"totalPaginas"`
	Synopsis    *string `json:"sinopsis"`
	DocumentURL *string `json:"urlLibro"`
	SignedURL   *string `json:"url_firmada"`
	CoverURL    *string `json:"urlPortada"`
	Publisher   *struct {
		ID   int64  `json:"idEditorial"`
		Name string `json:"nombre"`
	} `json:"editorial"`
	Authors []struct {
		ID   int64  `json:"idAutor"`
		Name string `json:"nombre"`
	} `json:"autores"`
	Categories []struct {
		ID   int64  `json:"idCategoria"`
		Name string `json:"nombre"`
	} `json:"categorias"`
	Languages []struct {
		ID   int64  `json:"idLenguaje"`
		Name string `json:"nombre"`
	} `json:"lenguajes"`
}

type countData struct {
	TotalBooks int `json:"total_libros"`
}

func (g *HTTPGateway) ListBooks(ctx context.Context, skip, limit int) ([]domain.Book, error) {
	return g.list(ctx, "/libros", url.Values{"skip": {strconv.Itoa(skip)}, "limit": {strconv.Itoa(limit)}})
}

func (g *HTTPGateway) CountBooks(ctx context.Context) (int, error) {
	data := countData{}
	if _, err := g.client.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: "/libros/count"}, &data); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return data.TotalBooks, nil
}

func (g *HTTPGateway) GetBook(ctx context.Context, id int64) (domain.Book, error) {
	data := libro{}
	env, err := g.client.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: fmt.Sprintf("/libros/%d", id)}, &data)
	if err != nil {
		return domain.Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	if !env.HasData() {
		return domain.Book{}, apperrors.ErrNotFound
	}
	return data.toDomain(), nil
}

func (g *HTTPGateway) BooksByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Book, error) {
	return g.list(ctx, fmt.Sprintf("/autores/%d/libros", authorID), url.Values{"skip": {"0"}, "limit": {strconv.Itoa(limit)}})
}

func (g *HTTPGateway) Recommendations(ctx context.Context, limit int) ([]domain.Book, error) {
	return g.list(ctx, "/recomendaciones", url.Values{"limit": {strconv.Itoa(limit)}})
}

func (g *HTTPGateway) list(ctx context.Context, path string, query url.Values) ([]domain.Book, error) {
	data := []libro{}
	if _, err := g.client.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: path, Query: query}, &data); err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	books := make([]domain.Book, 0, len(data))
	for _, item := range data {
		books = append(books, item.toDomain())
	}
	return books, nil
}

func (l libro) toDomain() domain.Book {
	book := domain.Book{
		ID:          l.ID,
		Title:       l.Title,
		Synopsis:    deref(l.Synopsis),
		DocumentURL: deref(l.DocumentURL),
		SignedURL:   deref(l.SignedURL),
		CoverURL:    deref(l.CoverURL),
	}
	if l.TotalPages != nil && *l.TotalPages > 0 {
		book.TotalPages = *l.TotalPages
	}
	if l.Publisher != nil {
		book.Publisher = l.Publisher.Name
	}
	for _, author := range l.Authors {
		book.Authors = append(book.Authors, domain.Author{ID: author.ID, Name: author.Name})
	}
	for _, category := range l.Categories {
		book.Categories = append(book.Categories, category.Name)
	}
	for _, language := range l.Languages {
		book.Languages = append(book.Languages, language.Name)
	}
	return book
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
