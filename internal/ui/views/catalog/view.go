package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogdto "lectern/internal/modules/catalog/dto"
	"lectern/internal/ui/theme"
)

// Port is the catalog surface this view needs.
type Port interface {
	ListBooks(ctx context.Context, page, limit int) (catalogdto.PageOutput, error)
	GetBook(ctx context.Context, id int64) (catalogdto.BookOutput, error)
}

type PageLoadedMsg struct {
	Page catalogdto.PageOutput
	Err  error
}

type DetailLoadedMsg struct {
	Book catalogdto.BookOutput
	Err  error
}

// OpenBookMsg asks the app to open the selected book in the reader.
type OpenBookMsg struct {
	BookID int64
	Title  string
}

type bookItem struct {
	book catalogdto.BookOutput
}

func (i bookItem) Title() string { return i.book.Title }

func (i bookItem) Description() string {
	parts := []string{authorNames(i.book.Authors)}
	if i.book.TotalPages > 0 {
		parts = append(parts, fmt.Sprintf("%d pp.", i.book.TotalPages))
	}
	if !i.book.HasDocument {
		parts = append(parts, "no PDF")
	}
	return strings.Join(parts, "  ")
}

func (i bookItem) FilterValue() string {
	return i.book.Title + " " + authorNames(i.book.Authors)
}

type Model struct {
	port    Port
	list    list.Model
	detail  catalogdto.BookOutput
	preview viewport.Model
	spinner spinner.Model
	page    catalogdto.PageOutput
	loading bool
	err     error
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Catalog"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
		page:    catalogdto.PageOutput{Page: 1},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadPageCmd(1), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case PageLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.preview.SetContent(theme.Error.Render(msg.Err.Error()))
			return m, nil
		}
		m.page = msg.Page
		m.list.Title = fmt.Sprintf("Catalog  %d/%d", msg.Page.Page, max(msg.Page.TotalPages, 1))
		items := make([]list.Item, len(msg.Page.Books))
		for i, b := range msg.Page.Books {
			items[i] = bookItem{book: b}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.list.Select(0)
		if len(msg.Page.Books) > 0 {
			m.detail = msg.Page.Books[0]
			m.preview.SetContent(m.renderDetail())
		}

	case DetailLoadedMsg:
		if msg.Err == nil && msg.Book.ID == m.selectedID() {
			m.detail = msg.Book
			m.preview.SetContent(m.renderDetail())
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(bookItem); ok {
				book := item.book
				return m, func() tea.Msg { return OpenBookMsg{BookID: book.ID, Title: book.Title} }
			}
		case "n", "pgdown":
			if m.page.Page < m.page.TotalPages {
				return m, m.GotoPage(m.page.Page + 1)
			}
		case "p", "pgup":
			if m.page.Page > 1 {
				return m, m.GotoPage(m.page.Page - 1)
			}
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(bookItem); ok {
				m.detail = item.book
				m.preview.SetContent(m.renderDetail())
				cmds = append(cmds, m.loadDetailCmd(item.book.ID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading catalog…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := theme.Pane.
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// GotoPage loads the given catalog page.
func (m *Model) GotoPage(page int) tea.Cmd {
	m.loading = true
	return tea.Batch(m.loadPageCmd(page), m.spinner.Tick)
}

// Refresh reloads the current page.
func (m *Model) Refresh() tea.Cmd {
	return m.GotoPage(max(m.page.Page, 1))
}

// Filtering reports whether the list's search filter is active. The app
// model checks this to avoid consuming global keys during a search.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) selectedID() int64 {
	if item, ok := m.list.SelectedItem().(bookItem); ok {
		return item.book.ID
	}
	return 0
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	b := m.detail
	if b.ID == 0 {
		return theme.Muted.Render("Select a book to see details")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(b.Title) + "\n")
	if len(b.Authors) > 0 {
		sb.WriteString(theme.Muted.Render(authorNames(b.Authors)) + "\n")
	}
	sb.WriteString("\n")
	row := func(label, value string) {
		if value != "" {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("%-11s", label)) + value + "\n")
		}
	}
	row("id:", fmt.Sprint(b.ID))
	row("publisher:", b.Publisher)
	if b.TotalPages > 0 {
		row("pages:", fmt.Sprint(b.TotalPages))
	}
	row("categories:", strings.Join(b.Categories, ", "))
	row("languages:", strings.Join(b.Languages, ", "))
	if b.HasDocument {
		row("document:", theme.Ok.Render("PDF available"))
	} else {
		row("document:", theme.Warn.Render("no PDF, synopsis only"))
	}
	if b.FromCache {
		sb.WriteString(theme.Warn.Render("offline copy from local cache") + "\n")
	}
	if b.Synopsis != "" {
		sb.WriteString("\n" + lipgloss.NewStyle().Width(max(m.preview.Width-2, 20)).Render(b.Synopsis) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: read  n/p: catalog page  /: filter"))
	return sb.String()
}

func (m Model) loadPageCmd(page int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.ListBooks(context.Background(), page, 0)
		return PageLoadedMsg{Page: out, Err: err}
	}
}

func (m Model) loadDetailCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		book, err := m.port.GetBook(context.Background(), id)
		return DetailLoadedMsg{Book: book, Err: err}
	}
}

func authorNames(authors []catalogdto.AuthorOutput) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.Name)
	}
	if len(names) == 0 {
		return "unknown author"
	}
	return strings.Join(names, ", ")
}
