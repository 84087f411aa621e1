package dto

type ListBooksInput struct {
	Page  int
	Limit int
}

type AuthorOutput struct {
	ID   int64
	Name string
}

type BookOutput struct {
	ID          int64
	Title       string
	TotalPages  int
	Synopsis    string
	DocumentURL string
	CoverURL    string
	Publisher   string
	Authors     []AuthorOutput
	Categories  []string
	Languages   []string
	HasDocument bool
	// FromCache is set when the backend was unreachable and the book came
	// from the local cache.
	FromCache bool
}

type PageOutput struct {
	Books      []BookOutput
	Count      int
	Page       int
	TotalPages int
}
