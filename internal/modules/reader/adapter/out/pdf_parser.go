package out

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	readerout "lectern/internal/modules/reader/port/out"
	"rsc.io/pdf"
)

type PDFParser struct{}

func NewPDFParser() readerout.DocumentParser {
	return &PDFParser{}
}

func (p *PDFParser) Parse(payload []byte) (doc readerout.ParsedDocument, err error) {
	defer recoverMalformed(&err)
	if len(payload) == 0 {
		return nil, fmt.Errorf("pdf is empty")
	}
	r, err := pdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	// NumPage walks the page tree; a broken one panics here rather than on
	// the first page read.
	return &pdfDocument{r: r, pages: r.NumPage()}, nil
}

type pdfDocument struct {
	// pdf.Reader makes no promise about concurrent use.
	mu    sync.Mutex
	r     *pdf.Reader
	pages int
}

func (d *pdfDocument) NumPages() int { return d.pages }

func (d *pdfDocument) PageText(page int) (text string, err error) {
	defer recoverMalformed(&err)
	if page < 1 || page > d.pages {
		return "", fmt.Errorf("pdf page %d outside 1..%d", page, d.pages)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	pg := d.r.Page(page)
	if pg.V.IsNull() {
		return "", fmt.Errorf("pdf page %d is null", page)
	}
	content := pg.Content()
	parts := make([]string, 0, len(content.Text))
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		parts = append(parts, t.S)
	}
	return strings.Join(parts, " "), nil
}

// rsc.io/pdf panics on some malformed object graphs.
func recoverMalformed(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed pdf: %v", r)
	}
}
