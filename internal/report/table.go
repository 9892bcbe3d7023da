package report

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

type cell struct {
	text  string
	color *color.Color
}

func plain(s string) cell { return cell{text: s} }

func colored(s string, c *color.Color) cell { return cell{text: s, color: c} }

// table aligns columns by display width; colors apply after padding.
type table struct {
	header []string
	rows   [][]cell
}

func (t *table) add(cells ...cell) { t.rows = append(t.rows, cells) }

func (t *table) render(w io.Writer, useColor bool) error {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(c.text))
			}
		}
	}

	var b strings.Builder
	head := make([]cell, len(t.header))
	bold := color.New(color.Bold)
	for i, h := range t.header {
		head[i] = colored(h, bold)
	}
	writeRow(&b, head, widths, useColor)
	for _, row := range t.rows {
		writeRow(&b, row, widths, useColor)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, row []cell, widths []int, useColor bool) {
	for i, c := range row {
		text := c.text
		if i < len(row)-1 {
			text = runewidth.FillRight(text, widths[i])
		}
		if useColor && c.color != nil {
			text = c.color.Sprint(text)
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(text)
	}
	b.WriteString("\n")
}

var (
	okColor   = color.New(color.FgGreen)
	badColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
