// Package textfmt lays out plain text for terminals, accounting for wide (Hangul) runes.
package textfmt

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const terminalWidthBackup = 80

// Table formats headers and rows into aligned lines separated by two spaces.
func Table(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = Width(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			if w := Width(cellAt(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		if i > 0 {
			b.WriteString("  ")
		}
		cell := padCell(cellAt(row, i), widths[i], rightAlignCols[i])
		if i == len(widths)-1 && !rightAlignCols[i] {
			cell = strings.TrimRight(cell, " ")
		}
		b.WriteString(cell)
	}
	return b.String()
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := Width(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

// Width returns the number of terminal cells value occupies.
func Width(value string) int {
	return runewidth.StringWidth(value)
}

// Truncate shortens value to width cells, ending with an ellipsis when cut.
func Truncate(value string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(value, width, "…")
}

// Wrap breaks text into lines of at most width cells, preferring spaces.
// Existing line breaks are kept.
func Wrap(text string, width int) []string {
	paragraphs := strings.Split(text, "\n")
	if width <= 0 {
		return paragraphs
	}
	var out []string
	for _, p := range paragraphs {
		out = append(out, wrapLine([]rune(p), width)...)
	}
	return out
}

func wrapLine(runes []rune, width int) []string {
	var out []string
	line := make([]rune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		r := runes[i]
		w := runewidth.RuneWidth(r)
		if lineWidth+w > width && len(line) > 0 {
			if r == ' ' {
				out = append(out, string(line))
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
				i++
				continue
			}
			if lastSpaceIdx >= 0 {
				out = append(out, string(line[:lastSpaceIdx]))
				line = append([]rune{}, line[lastSpaceIdx+1:]...)
				lineWidth = runewidth.StringWidth(string(line))
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out = append(out, string(line))
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, r)
		lineWidth += w
		if r == ' ' {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	return append(out, string(line))
}

func lastSpaceIndex(line []rune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i] == ' ' {
			return i
		}
	}
	return -1
}

// TerminalWidth returns the width of f when it is a terminal, or a fallback.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
