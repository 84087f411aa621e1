package out_test

import (
	"bytes"
	"fmt"
	"testing"

	readerout "lectern/internal/modules/reader/adapter/out"
)

// buildPDF writes a minimal PDF with the given number of empty pages.
func buildPDF(pages int) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
	}
	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objects))
	for i, obj := range objects {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPDFParserCountsPages(t *testing.T) {
	t.Parallel()
	parser := readerout.NewPDFParser()
	doc, err := parser.Parse(buildPDF(3))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.NumPages() != 3 {
		t.Fatalf("expected 3 pages, got %d", doc.NumPages())
	}
}

func TestPDFParserRejectsBadInput(t *testing.T) {
	t.Parallel()
	parser := readerout.NewPDFParser()
	if _, err := parser.Parse(nil); err == nil {
		t.Fatalf("empty payload should fail")
	}
	if _, err := parser.Parse([]byte("<html>not a pdf</html>")); err == nil {
		t.Fatalf("html payload should fail")
	}
	doc, err := parser.Parse(buildPDF(2))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := doc.PageText(0); err == nil {
		t.Fatalf("page zero should fail")
	}
	if _, err := doc.PageText(5); err == nil {
		t.Fatalf("page beyond the document should fail")
	}
}
