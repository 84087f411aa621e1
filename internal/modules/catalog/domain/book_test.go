package domain_test

import (
	"testing"

	"lectern/internal/modules/catalog/domain"
)

func TestBookValidate(t *testing.T) {
	t.Parallel()
	base := domain.Book{ID: 7, Title: "Rayuela", TotalPages: 600}
	if err := base.Validate(); err != nil {
		t.Fatalf("book should be valid: %v", err)
	}
	missingID := base
	missingID.ID = 0
	if err := missingID.Validate(); err == nil {
		t.Fatalf("missing id should fail")
	}
	missingTitle := base
	missingTitle.Title = "  "
	if err := missingTitle.Validate(); err == nil {
		t.Fatalf("missing title should fail")
	}
	negative := base
	negative.TotalPages = -1
	if err := negative.Validate(); err == nil {
		t.Fatalf("negative page count should fail")
	}
}

func TestDocumentLinkPrefersSignedURL(t *testing.T) {
	t.Parallel()
	book := domain.Book{DocumentURL: "s3://bucket/7.pdf", SignedURL: "https://cdn.example.edu/7.pdf?sig=1"}
	if book.DocumentLink() != book.SignedURL {
		t.Fatalf("expected signed url, got %q", book.DocumentLink())
	}
	book.SignedURL = ""
	if book.DocumentLink() != "s3://bucket/7.pdf" {
		t.Fatalf("expected document url, got %q", book.DocumentLink())
	}
	if (domain.Book{}).HasDocument() {
		t.Fatalf("empty book should have no document")
	}
}

func TestNewPageComputesTotalPages(t *testing.T) {
	t.Parallel()
	cases := []struct {
		count, number, limit, want int
		next, prev                 bool
	}{
		{count: 0, number: 1, limit: 20, want: 0},
		{count: 20, number: 1, limit: 20, want: 1},
		{count: 21, number: 1, limit: 20, want: 2, next: true},
		{count: 41, number: 3, limit: 20, want: 3, prev: true},
	}
	for _, tc := range cases {
		page := domain.NewPage(nil, tc.count, tc.number, tc.limit)
		if page.TotalPages != tc.want || page.HasNext() != tc.next || page.HasPrev() != tc.prev {
			t.Fatalf("count=%d number=%d: got %+v", tc.count, tc.number, page)
		}
	}
}
