package render

import (
	"strings"

	"github.com/DachengChen/progression/chat"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	userLabelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	assistantLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// Terminal renders units for a fixed-width terminal. Message text of
// both roles is treated as markdown.
type Terminal struct {
	style string
	width int

	md      *glamour.TermRenderer
	mdWidth int
}

// NewTerminal creates a renderer with a glamour standard style
// ("dark", "light", "notty", ...).
func NewTerminal(style string, width int) *Terminal {
	if style == "" {
		style = "dark"
	}
	return &Terminal{style: style, width: width}
}

// SetWidth changes the wrap width used by the next render.
func (t *Terminal) SetWidth(width int) { t.width = width }

// Render returns the transcript as terminal lines.
func (t *Terminal) Render(units []Unit) []string {
	var lines []string
	for _, u := range units {
		if u.Role == chat.RoleUser {
			lines = append(lines, userLabelStyle.Render(u.Label))
		} else {
			lines = append(lines, assistantLabelStyle.Render(u.Label))
		}
		lines = append(lines, strings.Split(t.Markdown(u.Text), "\n")...)
		lines = append(lines, "")
	}
	return lines
}

// Markdown renders text with glamour, falling back to the raw text.
func (t *Terminal) Markdown(text string) string {
	r := t.renderer()
	if r == nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (t *Terminal) wrapWidth() int {
	if t.width <= 0 {
		return 76
	}
	if t.width < 20 {
		return t.width
	}
	return t.width - 4
}

func (t *Terminal) renderer() *glamour.TermRenderer {
	w := t.wrapWidth()
	if t.md != nil && t.mdWidth == w {
		return t.md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(t.style),
		glamour.WithWordWrap(w),
	)
	if err != nil {
		return nil
	}
	t.md = r
	t.mdWidth = w
	return r
}

// ThreadLabel fits a thread name into width display cells. Wide runes
// count double.
func ThreadLabel(name string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(name, width, "…")
}
