package progress

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	progressdto "lectern/internal/modules/progress/dto"
	"lectern/internal/ui/theme"
)

type Port interface {
	Stats(ctx context.Context) (progressdto.StatsOutput, error)
	InProgress(ctx context.Context) ([]progressdto.RecordOutput, error)
	Completed(ctx context.Context) ([]progressdto.RecordOutput, error)
}

type LoadedMsg struct {
	Stats   progressdto.StatsOutput
	Records []progressdto.RecordOutput
	Done    bool
	Err     error
}

// ResumeMsg asks the app to reopen a book from the reading list.
type ResumeMsg struct {
	BookID int64
	Title  string
}

type recordItem struct {
	record progressdto.RecordOutput
}

func (i recordItem) Title() string {
	if i.record.BookTitle != "" {
		return i.record.BookTitle
	}
	return fmt.Sprintf("book %d", i.record.BookID)
}

func (i recordItem) Description() string {
	if i.record.BookTotalPages > 0 {
		return fmt.Sprintf("p. %d / %d  %s", i.record.Page, i.record.BookTotalPages, theme.Progress(i.record.Page, i.record.BookTotalPages, 12))
	}
	return fmt.Sprintf("p. %d", i.record.Page)
}

func (i recordItem) FilterValue() string { return i.Title() }

type Model struct {
	port    Port
	list    list.Model
	spinner spinner.Model
	stats   progressdto.StatsOutput
	done    bool
	loading bool
	err     error
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Green).BorderForeground(theme.Green)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Green)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "In progress"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(false), m.spinner.Tick)
}

// Refresh reloads stats and the current list.
func (m *Model) Refresh() tea.Cmd {
	m.loading = true
	return tea.Batch(m.loadCmd(m.done), m.spinner.Tick)
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-5, 3))
		return m, nil

	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		m.stats = msg.Stats
		m.done = msg.Done
		if msg.Done {
			m.list.Title = "Completed"
		} else {
			m.list.Title = "In progress"
		}
		items := make([]list.Item, len(msg.Records))
		for i, r := range msg.Records {
			items[i] = recordItem{record: r}
		}
		return m, m.list.SetItems(items)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case "c":
			m.loading = true
			return m, m.loadCmd(!m.done)
		case "r":
			return m, m.Refresh()
		case "enter":
			if item, ok := m.list.SelectedItem().(recordItem); ok {
				r := item.record
				title := item.Title()
				return m, func() tea.Msg { return ResumeMsg{BookID: r.BookID, Title: title} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading your reading…")
	}
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		statBox("completed", m.stats.Completed),
		statBox("in progress", m.stats.InProgress),
		statBox("pages read", m.stats.PagesRead),
	)
	footer := theme.Muted.Render("enter: resume  c: toggle completed  r: refresh")
	if m.err != nil {
		footer = theme.Warn.Render(m.err.Error()) + "  " + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, stats, m.list.View(), footer)
}

func statBox(label string, value int) string {
	return theme.Pane.Padding(0, 2).Render(theme.Hot.Render(fmt.Sprint(value)) + " " + theme.Muted.Render(label))
}

// loadCmd fetches stats and one reading list concurrently.
func (m Model) loadCmd(done bool) tea.Cmd {
	return func() tea.Msg {
		out := LoadedMsg{Done: done}
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			stats, err := m.port.Stats(ctx)
			out.Stats = stats
			return err
		})
		g.Go(func() error {
			var err error
			if done {
				out.Records, err = m.port.Completed(ctx)
			} else {
				out.Records, err = m.port.InProgress(ctx)
			}
			return err
		})
		out.Err = g.Wait()
		return out
	}
}
