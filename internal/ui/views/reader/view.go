// Package reader is the page viewport: it pages through one book, keeps the
// reading session in step with the visible page and flushes it on exit.
package reader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	readerdto "lectern/internal/modules/reader/dto"
	sessiondto "lectern/internal/modules/session/dto"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/ui/theme"
)

// SessionPort is the reading-session surface the view drives.
type SessionPort interface {
	Open(ctx context.Context, bookID int64) (sessiondto.SessionOutput, error)
	Next(ctx context.Context) (sessiondto.SessionOutput, error)
	Prev(ctx context.Context) (sessiondto.SessionOutput, error)
	Goto(ctx context.Context, page int) (sessiondto.SessionOutput, error)
	ResolveTotalPages(ctx context.Context, bookID int64, count int) (sessiondto.SessionOutput, error)
	Back(ctx context.Context) (sessiondto.FlushOutput, error)
	Quit(ctx context.Context) (sessiondto.CloseOutput, error)
}

// DocumentPort loads documents and page text.
type DocumentPort interface {
	Load(ctx context.Context, bookID int64, reload bool) (readerdto.DocumentOutput, error)
	Page(ctx context.Context, bookID int64, page int) (readerdto.PageOutput, error)
	OpenExternal(ctx context.Context, bookID int64) (readerdto.ExternalOutput, error)
}

type SessionOpenedMsg struct {
	BookID  int64
	Session sessiondto.SessionOutput
	Err     error
}

type DocumentLoadedMsg struct {
	BookID int64
	Doc    readerdto.DocumentOutput
	Err    error
}

type TotalResolvedMsg struct {
	Session sessiondto.SessionOutput
	Err     error
}

type NavigatedMsg struct {
	Session sessiondto.SessionOutput
	Err     error
}

type PageLoadedMsg struct {
	BookID int64
	Number int
	Page   readerdto.PageOutput
	Err    error
}

// BackMsg is emitted after the back flush; the app switches to the catalog.
type BackMsg struct {
	Flush sessiondto.FlushOutput
	Err   error
}

// ClosedMsg is emitted after the session has been closed on quit.
type ClosedMsg struct {
	Close sessiondto.CloseOutput
	Err   error
}

type ExternalMsg struct {
	Out readerdto.ExternalOutput
	Err error
}

type state int

const (
	stateIdle state = iota
	stateOpening
	stateReady
	stateUnavailable
	stateFailed
)

type Model struct {
	sessions SessionPort
	docs     DocumentPort

	state   state
	bookID  int64
	title   string
	session sessiondto.SessionOutput
	doc     readerdto.DocumentOutput
	page    readerdto.PageOutput
	failure error
	notice  string
	warn    bool

	viewport  viewport.Model
	spinner   spinner.Model
	gotoInput textinput.Model
	typing    bool
	width     int
	height    int
}

func New(sessions SessionPort, docs DocumentPort) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	ti := textinput.New()
	ti.Placeholder = "page"
	ti.CharLimit = 6
	ti.Width = 8

	return Model{
		sessions:  sessions,
		docs:      docs,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
		gotoInput: ti,
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Open starts (or resumes) the session for a book and loads its document.
func (m *Model) Open(bookID int64, title string) tea.Cmd {
	m.state = stateOpening
	m.bookID = bookID
	m.title = title
	m.session = sessiondto.SessionOutput{}
	m.doc = readerdto.DocumentOutput{}
	m.page = readerdto.PageOutput{}
	m.failure = nil
	m.setNotice("", false)
	m.viewport.SetContent("")
	return tea.Batch(m.openCmd(bookID), m.spinner.Tick)
}

// Goto jumps to page when a document is showing.
func (m Model) Goto(page int) tea.Cmd {
	if m.state != stateReady {
		return nil
	}
	return m.navigateCmd(func(ctx context.Context) (sessiondto.SessionOutput, error) {
		return m.sessions.Goto(ctx, page)
	})
}

// Reload fetches the document again, bypassing the local cache.
func (m *Model) Reload() tea.Cmd {
	switch m.state {
	case stateReady, stateUnavailable:
		m.state = stateOpening
		return tea.Batch(m.loadDocCmd(true), m.spinner.Tick)
	case stateFailed:
		return m.Open(m.bookID, m.title)
	}
	return nil
}

func (m Model) External() tea.Cmd {
	if m.bookID == 0 {
		return nil
	}
	bookID := m.bookID
	return func() tea.Msg {
		out, err := m.docs.OpenExternal(context.Background(), bookID)
		return ExternalMsg{Out: out, Err: err}
	}
}

// Back flushes the session. The session itself stays open.
func (m Model) Back() tea.Cmd {
	if m.session.BookID == 0 {
		return func() tea.Msg { return BackMsg{} }
	}
	return func() tea.Msg {
		out, err := m.sessions.Back(context.Background())
		return BackMsg{Flush: out, Err: err}
	}
}

// Quit closes the session; it returns nil when nothing is open.
func (m Model) Quit() tea.Cmd {
	if m.session.BookID == 0 {
		return nil
	}
	return func() tea.Msg {
		out, err := m.sessions.Quit(context.Background())
		return ClosedMsg{Close: out, Err: err}
	}
}

func (m Model) Session() sessiondto.SessionOutput { return m.session }

// Typing reports whether the goto prompt owns the keyboard.
func (m Model) Typing() bool { return m.typing }

func (m Model) Notice() string { return m.notice }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if m.state == stateReady {
			m.viewport.SetContent(m.renderPage())
		}
		return m, nil

	case SessionOpenedMsg:
		if msg.BookID != m.bookID {
			return m, nil
		}
		var initErr *apperrors.SessionInitError
		if msg.Err != nil && !errors.As(msg.Err, &initErr) {
			m.state = stateFailed
			m.failure = msg.Err
			return m, nil
		}
		m.session = msg.Session
		if m.title == "" {
			m.title = msg.Session.BookTitle
		}
		if initErr != nil {
			m.setNotice("offline: progress for this book will not be saved", true)
		}
		return m, m.loadDocCmd(false)

	case DocumentLoadedMsg:
		if msg.BookID != m.bookID {
			return m, nil
		}
		if msg.Err != nil {
			m.state = stateUnavailable
			m.failure = msg.Err
			return m, nil
		}
		m.doc = msg.Doc
		m.state = stateReady
		m.failure = nil
		if !msg.Doc.Simulated && msg.Doc.TotalPages > 0 {
			return m, m.resolveCmd(msg.Doc.TotalPages)
		}
		return m, m.pageCmd(m.session.CurrentPage)

	case TotalResolvedMsg:
		if msg.Err != nil {
			m.setNotice(msg.Err.Error(), true)
		} else if msg.Session.BookID == m.bookID {
			m.session = msg.Session
		}
		return m, m.pageCmd(m.session.CurrentPage)

	case NavigatedMsg:
		if msg.Err != nil {
			m.setNotice(msg.Err.Error(), true)
			return m, nil
		}
		if msg.Session.BookID != m.bookID {
			return m, nil
		}
		m.session = msg.Session
		if msg.Session.Changed {
			return m, m.pageCmd(msg.Session.CurrentPage)
		}
		return m, nil

	case PageLoadedMsg:
		if msg.BookID != m.bookID || msg.Number != m.session.CurrentPage {
			return m, nil
		}
		if msg.Err != nil {
			var unavailable *apperrors.DocumentUnavailableError
			if errors.As(msg.Err, &unavailable) {
				m.state = stateUnavailable
				m.failure = msg.Err
				return m, nil
			}
			m.setNotice(msg.Err.Error(), true)
			return m, nil
		}
		m.page = msg.Page
		m.viewport.SetContent(m.renderPage())
		m.viewport.GotoTop()
		return m, nil

	case BackMsg:
		switch {
		case msg.Err != nil && !errors.Is(msg.Err, apperrors.ErrNoActiveSession):
			m.setNotice(msg.Err.Error(), true)
		case msg.Flush.Warning != "":
			// Logged by the session controller; saving is best effort.
			m.setNotice("", false)
		case msg.Flush.Persisted:
			m.setNotice(fmt.Sprintf("saved page %d", msg.Flush.Page), false)
		}
		return m, nil

	case ClosedMsg:
		m.session = sessiondto.SessionOutput{}
		m.state = stateIdle
		return m, nil

	case ExternalMsg:
		if msg.Err != nil {
			m.setNotice(msg.Err.Error(), true)
		} else if msg.Out.Launched {
			m.setNotice("opened "+msg.Out.Path, false)
		} else {
			m.setNotice("saved to "+msg.Out.Path, false)
		}
		return m, nil

	case spinner.TickMsg:
		if m.state == stateOpening {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.typing {
			return m.updateGoto(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, m.Back()
	case "r":
		return m, m.Reload()
	case "e":
		return m, m.External()
	}
	if m.state != stateReady {
		return m, nil
	}
	switch msg.String() {
	case "right", "l", "n":
		return m, m.navigateCmd(m.sessions.Next)
	case "left", "h", "p":
		return m, m.navigateCmd(m.sessions.Prev)
	case "home":
		return m, m.Goto(1)
	case "end":
		if m.session.TotalPages > 0 {
			return m, m.Goto(m.session.TotalPages)
		}
		return m, nil
	case "g":
		m.typing = true
		m.gotoInput.SetValue("")
		return m, m.gotoInput.Focus()
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateGoto(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.typing = false
		m.gotoInput.Blur()
		return m, nil
	case "enter":
		m.typing = false
		m.gotoInput.Blur()
		page, err := strconv.Atoi(strings.TrimSpace(m.gotoInput.Value()))
		if err != nil {
			m.setNotice("not a page number", true)
			return m, nil
		}
		return m, m.Goto(page)
	}
	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	return m, cmd
}

func (m *Model) setNotice(text string, warn bool) {
	m.notice = text
	m.warn = warn
}

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-4, 1)
}

func (m Model) View() string {
	switch m.state {
	case stateIdle:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("Pick a book in the Catalog tab (enter) to start reading"))
	case stateOpening:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Opening "+m.displayTitle()+"…")
	case stateFailed:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Error.Render("Could not open this book")+"\n\n"+
				theme.Muted.Render(m.failure.Error())+"\n\n"+
				theme.Muted.Render("r: retry  esc: back"))
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	var body string
	if m.state == stateUnavailable {
		body = lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center,
			theme.Error.Render("Document unavailable")+"\n\n"+
				theme.Muted.Render(m.failure.Error())+"\n\n"+
				theme.Muted.Render("r: retry  esc: back"))
	} else {
		body = m.viewport.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) displayTitle() string {
	if m.title != "" {
		return m.title
	}
	return fmt.Sprintf("book %d", m.bookID)
}

func (m Model) renderHeader() string {
	s := m.session
	total := "?"
	if s.TotalPages > 0 {
		total = strconv.Itoa(s.TotalPages)
	}
	parts := []string{
		theme.Title.Render(m.displayTitle()),
		theme.Muted.Render(fmt.Sprintf("p. %d / %s", s.CurrentPage, total)),
		theme.Progress(s.CurrentPage, s.TotalPages, 20),
	}
	if s.Status == "completed" {
		parts = append(parts, theme.Ok.Render("completed"))
	}
	if s.Offline {
		parts = append(parts, theme.Warn.Render("offline"))
	} else if s.Dirty {
		parts = append(parts, theme.Warn.Render("● unsaved"))
	}
	if m.doc.Simulated {
		parts = append(parts, theme.Muted.Render("[no PDF]"))
	}
	return strings.Join(parts, "  ") + "\n"
}

func (m Model) renderFooter() string {
	if m.typing {
		return "go to page: " + m.gotoInput.View()
	}
	keys := theme.Muted.Render("←/→: page  g: go to  home/end  r: reload  e: external  esc: back")
	if m.notice == "" {
		return keys
	}
	style := theme.Ok
	if m.warn {
		style = theme.Warn
	}
	return style.Render(m.notice) + "  " + keys
}

func (m Model) renderPage() string {
	text := strings.TrimSpace(m.page.Text)
	if text == "" {
		text = theme.Muted.Render("(this page has no extractable text)")
	}
	width := max(m.width-8, 20)
	rendered := theme.Page.Width(width).Render(text)
	if m.page.Simulated {
		rendered = theme.Warn.Render("  simulated page, the full text is not available") + "\n" + rendered
	}
	return rendered
}

func (m Model) openCmd(bookID int64) tea.Cmd {
	return func() tea.Msg {
		out, err := m.sessions.Open(context.Background(), bookID)
		return SessionOpenedMsg{BookID: bookID, Session: out, Err: err}
	}
}

func (m Model) loadDocCmd(reload bool) tea.Cmd {
	bookID := m.bookID
	return func() tea.Msg {
		doc, err := m.docs.Load(context.Background(), bookID, reload)
		return DocumentLoadedMsg{BookID: bookID, Doc: doc, Err: err}
	}
}

func (m Model) resolveCmd(count int) tea.Cmd {
	bookID := m.bookID
	return func() tea.Msg {
		out, err := m.sessions.ResolveTotalPages(context.Background(), bookID, count)
		return TotalResolvedMsg{Session: out, Err: err}
	}
}

func (m Model) navigateCmd(move func(context.Context) (sessiondto.SessionOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := move(context.Background())
		return NavigatedMsg{Session: out, Err: err}
	}
}

func (m Model) pageCmd(number int) tea.Cmd {
	bookID := m.bookID
	return func() tea.Msg {
		page, err := m.docs.Page(context.Background(), bookID, number)
		return PageLoadedMsg{BookID: bookID, Number: number, Page: page, Err: err}
	}
}
