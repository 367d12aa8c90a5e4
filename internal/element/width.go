package element

import (
	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/width"
)

// RuneWidth returns the terminal cells r occupies: two for East Asian wide
// and fullwidth runes, one otherwise.
func RuneWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// CellWidth returns the terminal cells s occupies.
func CellWidth(s string) int {
	n := 0
	for _, r := range s {
		n += RuneWidth(r)
	}
	return n
}

// drawText writes s from (x, y), clipped to limit cells when limit > 0, and
// returns the cells used.
func drawText(c Canvas, x, y int, s string, limit int, style tcell.Style) int {
	used := 0
	for _, r := range s {
		w := RuneWidth(r)
		if limit > 0 && used+w > limit {
			break
		}
		c.SetContent(x+used, y, r, nil, style)
		used += w
	}
	return used
}
