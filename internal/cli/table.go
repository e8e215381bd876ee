package cli

import (
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

// ansiPattern matches SGR escape sequences emitted by termenv swatches.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Table formats rows into aligned columns. Cells may contain terminal
// colour codes; widths are measured on the visible text.
type Table struct {
	headers   []string
	rows      [][]string
	padding   int
	maxWidths map[int]int
	right     map[int]bool
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers:   headers,
		padding:   2,
		maxWidths: make(map[int]int),
		right:     make(map[int]bool),
	}
}

// SetColumnMaxWidth wraps column col at word boundaries to width.
func (t *Table) SetColumnMaxWidth(col, width int) {
	t.maxWidths[col] = width
}

// AlignRight right-aligns column col (for numbers).
func (t *Table) AlignRight(cols ...int) {
	for _, c := range cols {
		t.right[c] = true
	}
}

// AddRow appends a row, padding or truncating it to the header count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render formats the table.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	// cells[row][col] holds the wrapped lines of each cell.
	cells := make([][][]string, len(t.rows))
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleWidth(h)
	}
	for r, row := range t.rows {
		cells[r] = make([][]string, len(row))
		for c, cell := range row {
			lines := []string{cell}
			if w := t.maxWidths[c]; w > 0 {
				lines = wrapText(cell, w)
			}
			cells[r][c] = lines
			for _, l := range lines {
				widths[c] = max(widths[c], visibleWidth(l))
			}
		}
	}

	sep := strings.Repeat(" ", t.padding)
	var b strings.Builder
	writeLine := func(parts []string) {
		b.WriteString(strings.TrimRight(strings.Join(parts, sep), " "))
		b.WriteByte('\n')
	}

	parts := make([]string, len(t.headers))
	for i, h := range t.headers {
		parts[i] = t.pad(i, h, widths[i])
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
		for line := 0; line < height; line++ {
			for c := range t.headers {
				text := ""
				if line < len(row[c]) {
					text = row[c][line]
				}
				parts[c] = t.pad(c, text, widths[c])
			}
			writeLine(parts)
		}
	}
	return b.String()
}

func (t *Table) pad(col int, s string, width int) string {
	gap := width - visibleWidth(s)
	if gap <= 0 {
		return s
	}
	if t.right[col] {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// visibleWidth is the number of terminal columns s occupies.
func visibleWidth(s string) int {
	return uniseg.StringWidth(ansiPattern.ReplaceAllString(s, ""))
}

// wrapText breaks text at spaces so no line exceeds width. Words longer
// than width are split.
func wrapText(text string, width int) []string {
	if width <= 0 || visibleWidth(text) <= width {
		return []string{text}
	}

	var lines []string
	var cur string
	for _, word := range strings.Fields(text) {
		for len(word) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case cur == "":
			cur = word
		case len(cur)+1+len(word) <= width:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	if len(lines) == 0 {
		return []string{text}
	}
	return lines
}
