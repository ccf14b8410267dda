package util

import (
	"github.com/mattn/go-tty"
)

const (
	TermMaxWidth        = 100
	TermSafeZonePadding = 10
)

// Truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut. Titles and previews hold Vietnamese text, so the cut has
// to be rune-based.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func GetTermSafeMaxWidth() int {
	termWidth, err := getTermWidth()
	if err != nil {
		return TermMaxWidth
	}
	width := termWidth - TermSafeZonePadding
	if width <= 0 {
		return termWidth
	}
	return width
}

func getTermWidth() (width int, err error) {
	t, err := tty.Open()
	if err != nil {
		return 0, err
	}
	defer t.Close()
	width, _, err = t.Size()
	return width, err
}
