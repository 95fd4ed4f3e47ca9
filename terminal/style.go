package terminal

import (
	"io"

	"query-chat/session"

	"github.com/charmbracelet/lipgloss"
)

type styleKind int

const (
	styleMuted styleKind = iota
	styleUser
	styleAssistant
)

// palette holds one lipgloss style per kind for a theme. Light terminals get
// darker tones.
type palette map[styleKind]lipgloss.Style

func newPalettes(out io.Writer) map[string]palette {
	r := lipgloss.NewRenderer(out)
	return map[string]palette{
		session.ThemeLight: {
			styleMuted:     r.NewStyle().Foreground(lipgloss.Color("8")),
			styleUser:      r.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
			styleAssistant: r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		},
		session.ThemeDark: {
			styleMuted:     r.NewStyle().Foreground(lipgloss.Color("7")),
			styleUser:      r.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
			styleAssistant: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		},
	}
}

func (t *Terminal) style(text string, kind styleKind) string {
	if !t.color {
		return text
	}
	t.mu.Lock()
	s := t.palettes[t.theme][kind]
	t.mu.Unlock()
	return s.Render(text)
}
