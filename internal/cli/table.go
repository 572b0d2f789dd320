package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table lays out rows in left-aligned columns under a dashed header rule.
// Widths are measured in terminal cells, so styled or wide text lines up.
type Table struct {
	headers   []string
	rows      [][]string
	padding   int
	maxWidths map[int]int
}

// NewTable creates a table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:   headers,
		padding:   2,
		maxWidths: make(map[int]int),
	}
}

// SetColumnMaxWidth wraps text in column col at word boundaries once it
// exceeds width cells.
func (t *Table) SetColumnMaxWidth(col, width int) {
	t.maxWidths[col] = width
}

// AddRow appends a row, padded or truncated to the header count.
func (t *Table) AddRow(row []string) {
	cells := make([]string, len(t.headers))
	copy(cells, row)
	t.rows = append(t.rows, cells)
}

// Render returns the table as text, one line per wrapped row line.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	// Each cell becomes the lines it wraps to.
	cells := make([][][]string, len(t.rows))
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for r, row := range t.rows {
		cells[r] = make([][]string, len(row))
		for c, text := range row {
			cells[r][c] = wrapText(text, t.maxWidths[c])
			for _, line := range cells[r][c] {
				widths[c] = max(widths[c], lipgloss.Width(line))
			}
		}
	}

	gap := strings.Repeat(" ", t.padding)
	var b strings.Builder
	writeLine := func(parts []string) {
		b.WriteString(strings.TrimRight(strings.Join(parts, gap), " "))
		b.WriteByte('\n')
	}

	parts := make([]string, len(t.headers))
	for i, h := range t.headers {
		parts[i] = padRight(h, widths[i])
	}
	writeLine(parts)

	for i, w := range widths {
		parts[i] = strings.Repeat("-", w)
	}
	writeLine(parts)

	for _, row := range cells {
		height := 1
		for _, lines := range row {
			height = max(height, len(lines))
		}
		for l := 0; l < height; l++ {
			for c := range t.headers {
				var text string
				if l < len(row[c]) {
					text = row[c][l]
				}
				parts[c] = padRight(text, widths[c])
			}
			writeLine(parts)
		}
	}

	return b.String()
}

// padRight pads s with spaces to width cells. Longer strings are unchanged.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// wrapText breaks text into lines of at most width cells at word boundaries.
// Words longer than width are split. A width of zero disables wrapping.
func wrapText(text string, width int) []string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return []string{text}
	}

	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		for len(word) > width {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case line == "":
			line = word
		case lipgloss.Width(line)+1+lipgloss.Width(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
