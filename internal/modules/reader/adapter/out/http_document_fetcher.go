package out

import (
	"context"
	"fmt"

	readerout "lectern/internal/modules/reader/port/out"
	"lectern/internal/platform/httpapi"
)

type HTTPDocumentFetcher struct {
	client *httpapi.Client
}

func NewHTTPDocumentFetcher(client *httpapi.Client) readerout.DocumentFetcher {
	return &HTTPDocumentFetcher{client: client}
}

func (f *HTTPDocumentFetcher) FetchProxy(ctx context.Context, bookID int64) ([]byte, error) {
	return f.client.Download(ctx, fmt.Sprintf("/libros/%d/pdf", bookID))
}

func (f *HTTPDocumentFetcher) FetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	return f.client.DownloadURL(ctx, rawURL)
}
