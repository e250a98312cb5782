package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tally/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

const maxHistory = 20

// Palette is a one-line command prompt. Tab completes the command word from
// the first matching hint; up and down walk previously submitted lines.
type Palette struct {
	input   textinput.Model
	hints   []string
	history []string
	cursor  int
	visible bool
	width   int
}

// NewPalette creates a closed palette offering hints as completions.
func NewPalette(hints ...string) Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 512
	return Palette{input: ti, hints: hints}
}

// Visible reports whether the palette is currently shown.
func (p Palette) Visible() bool { return p.visible }

// Open shows the palette, clears the input, and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.cursor = len(p.history)
	p.input.SetValue("")
	return p.input.Focus()
}

// SetWidth sets the render width for the overlay.
func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.remember(val)
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			if matches := p.matching(); len(matches) > 0 {
				p.input.SetValue(commandWord(matches[0]) + " ")
				p.input.CursorEnd()
			}
			return p, nil
		case "up":
			if p.cursor > 0 {
				p.cursor--
				p.input.SetValue(p.history[p.cursor])
				p.input.CursorEnd()
			}
			return p, nil
		case "down":
			if p.cursor < len(p.history) {
				p.cursor++
				val := ""
				if p.cursor < len(p.history) {
					val = p.history[p.cursor]
				}
				p.input.SetValue(val)
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if matches := p.matching(); len(matches) > 0 {
		sb.WriteString("\n")
		for _, h := range matches {
			sb.WriteString(hintStyle.Render("  "+h) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p *Palette) remember(line string) {
	if line == "" {
		return
	}
	if n := len(p.history); n > 0 && p.history[n-1] == line {
		return
	}
	p.history = append(p.history, line)
	if len(p.history) > maxHistory {
		p.history = p.history[len(p.history)-maxHistory:]
	}
}

// matching returns hints whose command word starts with the typed word.
func (p Palette) matching() []string {
	typed := strings.ToLower(commandWord(p.input.Value()))
	var out []string
	for _, h := range p.hints {
		if strings.HasPrefix(commandWord(h), typed) {
			out = append(out, h)
		}
	}
	return out
}

func commandWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
