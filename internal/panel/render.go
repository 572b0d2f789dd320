package panel

import (
	"bytes"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Highlight colours code for a terminal. The lexer is chosen from filename,
// falling back to CSS, which covers the subset every dialect emits.
func Highlight(code, filename, theme string) (string, error) {
	l := lexers.Match(filename)
	if l == nil {
		l = lexers.Get("css")
	}
	if l == nil {
		l = lexers.Fallback
	}
	l = chroma.Coalesce(l)

	f := formatters.Get("terminal256")
	if f == nil {
		f = formatters.Fallback
	}

	s := styles.Get(theme)
	if s == nil {
		s = styles.Fallback
	}

	it, err := l.Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := f.Format(&buf, s, it); err != nil {
		return "", err
	}
	return buf.String(), nil
}
