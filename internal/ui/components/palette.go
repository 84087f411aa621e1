package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lectern/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

// Hint describes one palette command.
type Hint struct {
	Command string
	Args    string
	Help    string
}

func (h Hint) usage() string {
	if h.Args == "" {
		return h.Command
	}
	return h.Command + " " + h.Args
}

// Hints lists the commands understood by the app model's palette handler.
var Hints = []Hint{
	{Command: "open", Args: "<book-id>", Help: "open or resume a book"},
	{Command: "goto", Args: "<page>", Help: "jump to a page"},
	{Command: "reload", Help: "download the document again"},
	{Command: "external", Help: "open the PDF in the system viewer"},
	{Command: "catalog", Args: "<page>", Help: "show a catalog page"},
	{Command: "refresh", Help: "reload catalog and progress"},
	{Command: "close", Help: "save progress and close the book"},
}

const maxShownHints = 5

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle     = lipgloss.NewStyle().Foreground(theme.Subtext0)
	selectedStyle = lipgloss.NewStyle().Foreground(theme.Lavender).Bold(true)
)

// Palette is a command-palette overlay backed by bubbles/textinput. Up/down
// pick a matching hint and tab completes its command word.
type Palette struct {
	input    textinput.Model
	visible  bool
	width    int
	selected int
}

// NewPalette creates an inactive Palette ready to be opened.
func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "open 12, goto 40, reload…"
	ti.CharLimit = 64
	return Palette{input: ti}
}

// Visible reports whether the palette is currently shown.
func (p Palette) Visible() bool { return p.visible }

// Open shows the palette with an empty input and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.selected = 0
	p.input.SetValue("")
	return p.input.Focus()
}

// SetWidth sets the render width for the overlay.
func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		matches := p.matches()
		switch key.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			if val == "" && len(matches) > 0 && matches[p.selected].Args == "" {
				val = matches[p.selected].Command
			}
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "up", "ctrl+p":
			if p.selected > 0 {
				p.selected--
			}
			return p, nil
		case "down", "ctrl+n":
			if p.selected < len(matches)-1 {
				p.selected++
			}
			return p, nil
		case "tab":
			if len(matches) > 0 {
				h := matches[p.selected]
				completed := h.Command
				if h.Args != "" {
					completed += " "
				}
				p.input.SetValue(completed)
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if n := len(p.matches()); p.selected >= n {
		p.selected = max(n-1, 0)
	}
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

// matches returns the hints whose command starts with the typed command word.
func (p Palette) matches() []Hint {
	word := strings.ToLower(strings.TrimLeft(p.input.Value(), " "))
	if i := strings.IndexByte(word, ' '); i >= 0 {
		word = word[:i]
	}
	var out []Hint
	for _, h := range Hints {
		if strings.HasPrefix(h.Command, word) {
			out = append(out, h)
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")

	matches := p.matches()
	if len(matches) > 0 {
		sb.WriteString("\n")
	}
	for i, h := range matches {
		if i == maxShownHints {
			break
		}
		line := padRight(h.usage(), 18) + h.Help
		if i == p.selected {
			sb.WriteString(selectedStyle.Render("> "+line) + "\n")
			continue
		}
		sb.WriteString(hintStyle.Render("  "+line) + "\n")
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

func padRight(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}
