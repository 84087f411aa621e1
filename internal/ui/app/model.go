package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "lectern/internal/modules/session/dto"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/ui/components"
	"lectern/internal/ui/theme"
	catalogview "lectern/internal/ui/views/catalog"
	progressview "lectern/internal/ui/views/progress"
	readerview "lectern/internal/ui/views/reader"
)

// SessionPort is the session surface of the TUI: the reader view's port plus
// recovery of a session left open by an earlier run.
type SessionPort interface {
	readerview.SessionPort
	GetActive(ctx context.Context) (sessiondto.SessionOutput, error)
}

type tabID int

const (
	tabCatalog tabID = iota
	tabReader
	tabProgress
	tabCount
)

var tabLabels = [tabCount]string{"Catalog", "Reader", "Progress"}

type activeLoadedMsg struct {
	active sessiondto.SessionOutput
	err    error
}

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Open    key.Binding
	Pages   key.Binding
	Goto    key.Binding
	Back    key.Binding
	Retry   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "save & quit")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read book")),
		Pages:   key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "turn page")),
		Goto:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to page")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "save & back")),
		Retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload document")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Open},
		{k.Pages, k.Goto, k.Back, k.Retry},
		{k.Help, k.Palette, k.Quit},
	}
}

// Model is the root Bubble Tea model. It routes keys to the active tab,
// forwards async results to every view and closes the reading session
// before the program exits.
type Model struct {
	session SessionPort

	catView  catalogview.Model
	readView readerview.Model
	progView progressview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	quitting  bool
	status    string
	width     int
	height    int
}

func NewModel(catalog catalogview.Port, session SessionPort, docs readerview.DocumentPort, progress progressview.Port) Model {
	return Model{
		session:   session,
		catView:   catalogview.New(catalog),
		readView:  readerview.New(session, docs),
		progView:  progressview.New(progress),
		activeTab: tabCatalog,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.catView.Init(),
		m.progView.Init(),
		m.loadActiveCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case activeLoadedMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, apperrors.ErrNoActiveSession) {
				m.status = "active session check: " + msg.err.Error()
			}
			return m, nil
		}
		m.status = "resuming " + msg.active.BookTitle
		m.activeTab = tabReader
		return m, m.readView.Open(msg.active.BookID, msg.active.BookTitle)

	case catalogview.OpenBookMsg:
		m.activeTab = tabReader
		return m, m.readView.Open(msg.BookID, msg.Title)

	case progressview.ResumeMsg:
		m.activeTab = tabReader
		return m, m.readView.Open(msg.BookID, msg.Title)

	case readerview.BackMsg:
		var cmd tea.Cmd
		m.readView, cmd = m.readView.Update(msg)
		m.activeTab = tabCatalog
		m.status = m.readView.Notice()
		return m, tea.Batch(cmd, m.progView.Refresh())

	case readerview.ClosedMsg:
		var cmd tea.Cmd
		m.readView, cmd = m.readView.Update(msg)
		if m.quitting {
			return m, tea.Quit
		}
		if msg.Err != nil {
			m.status = "close: " + msg.Err.Error()
		} else {
			m.status = fmt.Sprintf("closed at page %d", msg.Close.EndPage)
		}
		return m, tea.Batch(cmd, m.progView.Refresh())

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.broadcast(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if !m.capturingText() {
		switch msg.String() {
		case "q":
			return m.quit()
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = true
			return m, nil
		case ":":
			return m, m.palette.Open()
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabCatalog:
		m.catView, cmd = m.catView.Update(msg)
	case tabReader:
		m.readView, cmd = m.readView.Update(msg)
	case tabProgress:
		m.progView, cmd = m.progView.Update(msg)
	}
	return m, cmd
}

// quit closes the open session first; tea.Quit follows its ClosedMsg.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	m.quitting = true
	closeCmd := m.readView.Quit()
	if closeCmd == nil {
		return m, tea.Quit
	}
	m.status = "saving…"
	return m, closeCmd
}

// broadcast hands async results to every view so a load finishing after a
// tab switch is not lost.
func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	var catCmd, readCmd, progCmd tea.Cmd
	m.catView, catCmd = m.catView.Update(msg)
	m.readView, readCmd = m.readView.Update(msg)
	m.progView, progCmd = m.progView.Update(msg)
	return tea.Batch(catCmd, readCmd, progCmd)
}

func (m Model) capturingText() bool {
	switch m.activeTab {
	case tabCatalog:
		return m.catView.Filtering()
	case tabReader:
		return m.readView.Typing()
	case tabProgress:
		return m.progView.Filtering()
	}
	return false
}

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		switch m.activeTab {
		case tabCatalog:
			content = m.catView.View()
		case tabReader:
			content = m.readView.View()
		case tabProgress:
			content = m.progView.View()
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "lectern  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if s := m.readView.Session(); s.BookID != 0 {
		marker := theme.Hot.Render("● " + s.BookTitle)
		if s.Offline {
			marker = theme.Warn.Render("○ " + s.BookTitle + " (offline)")
		}
		left = marker + theme.Muted.Render(fmt.Sprintf(" p.%d", s.CurrentPage)) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  ::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	arg := func() (int, bool) {
		if len(parts) < 2 {
			m.status = "usage: " + parts[0] + " <number>"
			return 0, false
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 1 {
			m.status = "not a positive number: " + parts[1]
			return 0, false
		}
		return n, true
	}

	switch parts[0] {
	case "open":
		if n, ok := arg(); ok {
			m.activeTab = tabReader
			return m, m.readView.Open(int64(n), "")
		}
	case "goto":
		if n, ok := arg(); ok {
			m.activeTab = tabReader
			return m, m.readView.Goto(n)
		}
	case "reload":
		m.activeTab = tabReader
		return m, m.readView.Reload()
	case "external":
		return m, m.readView.External()
	case "catalog":
		if n, ok := arg(); ok {
			m.activeTab = tabCatalog
			return m, m.catView.GotoPage(n)
		}
	case "refresh":
		return m, tea.Batch(m.catView.Refresh(), m.progView.Refresh())
	case "close":
		return m, m.readView.Quit()
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.catView, _ = m.catView.Update(sz)
	m.readView, _ = m.readView.Update(sz)
	m.progView, _ = m.progView.Update(sz)
}

func (m Model) loadActiveCmd() tea.Cmd {
	return func() tea.Msg {
		active, err := m.session.GetActive(context.Background())
		return activeLoadedMsg{active: active, err: err}
	}
}
