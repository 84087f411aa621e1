package catalog_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	catalogdto "lectern/internal/modules/catalog/dto"
	"lectern/internal/ui/views/catalog"
)

type fakePort struct {
	mu    sync.Mutex
	pages []int
	err   error
}

func (f *fakePort) ListBooks(_ context.Context, page, _ int) (catalogdto.PageOutput, error) {
	f.mu.Lock()
	f.pages = append(f.pages, page)
	f.mu.Unlock()
	if f.err != nil {
		return catalogdto.PageOutput{}, f.err
	}
	return catalogdto.PageOutput{
		Page:       page,
		TotalPages: 2,
		Count:      3,
		Books: []catalogdto.BookOutput{
			{ID: 1, Title: "Rayuela", TotalPages: 600, HasDocument: true, Authors: []catalogdto.AuthorOutput{{ID: 4, Name: "Julio Cortázar"}}},
			{ID: 2, Title: "Ficciones", TotalPages: 200},
		},
	}, nil
}

func (f *fakePort) GetBook(_ context.Context, id int64) (catalogdto.BookOutput, error) {
	return catalogdto.BookOutput{ID: id, Title: "detail"}, nil
}

// pageLoaded runs the page load out of a GotoPage/Init batch.
func pageLoaded(t *testing.T, cmd tea.Cmd) catalog.PageLoadedMsg {
	t.Helper()
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected a batch")
	}
	msg, ok := batch[0]().(catalog.PageLoadedMsg)
	if !ok {
		t.Fatalf("first command should load a catalog page")
	}
	return msg
}

func loaded(t *testing.T, port *fakePort) catalog.Model {
	t.Helper()
	m := catalog.New(port)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = m.Update(pageLoaded(t, m.Init()))
	return m
}

func TestCatalogViewListsBooksAndOpensSelection(t *testing.T) {
	t.Parallel()
	m := loaded(t, &fakePort{})
	view := m.View()
	for _, want := range []string{"Rayuela", "Ficciones", "Julio Cortázar"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter should open the selected book")
	}
	open, ok := cmd().(catalog.OpenBookMsg)
	if !ok || open.BookID != 1 || open.Title != "Rayuela" {
		t.Fatalf("unexpected open message %#v", open)
	}
}

func TestCatalogViewPagesForwardOnly(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := loaded(t, port)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	msg := pageLoaded(t, cmd)
	if msg.Page.Page != 2 {
		t.Fatalf("expected page 2, got %d", msg.Page.Page)
	}
	m, _ = m.Update(msg)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if cmd != nil {
		if _, isPage := cmd().(catalog.PageLoadedMsg); isPage {
			t.Fatalf("last page must not page further")
		}
	}
	port.mu.Lock()
	defer port.mu.Unlock()
	if len(port.pages) != 2 || port.pages[0] != 1 || port.pages[1] != 2 {
		t.Fatalf("unexpected page requests %v", port.pages)
	}
}

func TestCatalogViewShowsLoadError(t *testing.T) {
	t.Parallel()
	m := loaded(t, &fakePort{err: errors.New("backend unreachable")})
	if view := m.View(); !strings.Contains(view, "backend unreachable") {
		t.Fatalf("expected error in view:\n%s", view)
	}
}
