package domain

import (
	"fmt"
	"strings"
)

type Mode string

const (
	// ModeProxy fetches the document through the backend with the bearer token.
	ModeProxy Mode = "proxy"
	// ModeDirect fetches the signed or public document URL without credentials.
	ModeDirect Mode = "direct"
	// ModeSimulated is used for books without a digital document.
	ModeSimulated Mode = "simulated"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeProxy:
		return ModeProxy, nil
	case ModeDirect:
		return ModeDirect, nil
	}
	return "", fmt.Errorf("unsupported document mode %q", raw)
}

type BookRef struct {
	ID             int64
	Title          string
	Authors        []string
	Synopsis       string
	DocumentURL    string
	TotalPagesHint int
}

func (b BookRef) HasDocument() bool {
	return strings.TrimSpace(b.DocumentURL) != ""
}

type Document struct {
	BookID     int64
	Title      string
	Mode       Mode
	TotalPages int
	Size       int
	Cached     bool
}

type Page struct {
	Number    int
	Text      string
	Simulated bool
}

// SimulatedPage stands in for a page of a book that has no digital copy so
// the reader can still page through it and record progress.
func SimulatedPage(book BookRef, number, total int) Page {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", book.Title)
	if len(book.Authors) > 0 {
		fmt.Fprintf(&b, "by %s\n", strings.Join(book.Authors, ", "))
	}
	fmt.Fprintf(&b, "\nThis is a simulated page %d.\n", number)
	if total > 0 {
		fmt.Fprintf(&b, "The full text is not available digitally, but you can keep paging through all %d pages to record your progress.\n", total)
	} else {
		b.WriteString("The full text is not available digitally, but you can keep paging to record your progress.\n")
	}
	if synopsis := strings.TrimSpace(book.Synopsis); synopsis != "" && synopsis != "Sinopsis no disponible" {
		fmt.Fprintf(&b, "\nSynopsis:\n%s\n", synopsis)
	}
	return Page{Number: number, Text: b.String(), Simulated: true}
}
