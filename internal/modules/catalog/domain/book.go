package domain

import (
	"fmt"
	"strings"
	"time"
)

type Author struct {
	ID   int64
	Name string
}

type Book struct {
	ID int64
	// TotalPages is the catalog's page-count hint; 0 when unknown.
	TotalPages  int
	Title       string
	Synopsis    string
	DocumentURL string
	SignedURL   string
	CoverURL    string
	Publisher   string
	Authors     []Author
	Categories  []string
	Languages   []string
	CachedAt    time.Time
}

func (b Book) Validate() error {
	if b.ID <= 0 {
		return fmt.Errorf("book id must be positive")
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("book %d has no title", b.ID)
	}
	if b.TotalPages < 0 {
		return fmt.Errorf("book %d has negative page count", b.ID)
	}
	return nil
}

// DocumentLink prefers the signed storage URL over the stored document URL.
func (b Book) DocumentLink() string {
	if strings.TrimSpace(b.SignedURL) != "" {
		return b.SignedURL
	}
	return strings.TrimSpace(b.DocumentURL)
}

func (b Book) HasDocument() bool {
	return b.DocumentLink() != ""
}

// Page is one page of the paginated catalog listing.
type Page struct {
	Books      []Book
	Count      int
	Number     int
	Limit      int
	TotalPages int
}

func NewPage(books []Book, count, number, limit int) Page {
	totalPages := 0
	if limit > 0 && count > 0 {
		totalPages = (count + limit - 1) / limit
	}
	return Page{Books: books, Count: count, Number: number, Limit: limit, TotalPages: totalPages}
}

func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

func (p Page) HasPrev() bool {
	return p.Number > 1
}
