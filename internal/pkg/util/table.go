package util

import (
	"fmt"
	"io"
	"strings"
)

const (
	truncatedStringEnd = " ..."
	maxCellLength      = 40
)

// PrintTable renders columns and pre-formatted row cells as an ASCII table.
// Cell widths follow the data; values are dynamically typed so there is no
// schema to size columns from.
func PrintTable(w io.Writer, columns []string, rows [][]string) {
	if len(columns) == 0 {
		return
	}
	widths := computeWidths(columns, rows)

	printSeparator(w, widths)
	printCells(w, columns, widths)
	printSeparator(w, widths)
	for _, cells := range rows {
		printCells(w, cells, widths)
	}
	printSeparator(w, widths)
}

func printCells(w io.Writer, cells []string, widths []int) {
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = truncate(cells[i])
		}
		// pad with spaces on the right rather than the left (left-justify
		// the field); an asterisk * in the format specifies that the
		// padding size should be given as an argument
		fmt.Fprintf(w, "| %-*s ", width, cell)
	}
	fmt.Fprintf(w, "|\n")
}

func printSeparator(w io.Writer, widths []int) {
	total := 1
	for _, width := range widths {
		total += width + 3
	}
	fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", total-2))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) >= maxCellLength-len(truncatedStringEnd) {
		return string(r[0:maxCellLength-len(truncatedStringEnd)]) + truncatedStringEnd
	}
	return s
}

func computeWidths(columns []string, rows [][]string) []int {
	widths := make([]int, len(columns))
	for i, name := range columns {
		widths[i] = len([]rune(truncate(name)))
	}
	for _, cells := range rows {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			if l := len([]rune(truncate(cell))); l > widths[i] {
				widths[i] = l
			}
		}
	}
	return widths
}
