package headless

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/l1jgo/statecore/internal/platform"
)

var _ platform.TextSystem = TextSystem{}

// TextSystem measures text on a fixed cell grid: East Asian wide and
// fullwidth runes take two cells, nonspacing marks none.
type TextSystem struct {
	CellWidth  float32 // per font-size unit
	LineHeight float32 // per font-size unit
}

func NewTextSystem() TextSystem {
	return TextSystem{CellWidth: 0.5, LineHeight: 1.2}
}

func (t TextSystem) Measure(text string, fontSize float32) platform.Size {
	if text == "" {
		return platform.Size{}
	}
	lines := strings.Split(text, "\n")
	widest := 0
	for _, line := range lines {
		if c := Cells(line); c > widest {
			widest = c
		}
	}
	return platform.Size{
		Width:  float32(widest) * t.CellWidth * fontSize,
		Height: float32(len(lines)) * t.LineHeight * fontSize,
	}
}

// Cells returns the display width of s in grid cells.
func Cells(s string) int {
	n := 0
	for _, r := range s {
		n += runeCells(r)
	}
	return n
}

func runeCells(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	if unicode.Is(unicode.Mn, r) {
		return 0
	}
	return 1
}
