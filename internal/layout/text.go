package layout

import (
	"math"

	"github.com/mattn/go-runewidth"
)

// Average advance of one display cell, as a fraction of font size.
// Wide (east asian) runes occupy two cells.
const (
	cellAdvance     = 0.55
	boldCellAdvance = 0.6
	lineHeight      = 1.25
)

const ellipsis = "…"

// TextWidth estimates the rendered width of s at the given size.
func TextWidth(s string, size float64, bold bool) float64 {
	return float64(runewidth.StringWidth(s)) * cellWidth(size, bold)
}

// Truncate shortens s with a trailing ellipsis so it fits maxWidth.
func Truncate(s string, size float64, bold bool, maxWidth float64) string {
	cells := int(math.Floor(maxWidth / cellWidth(size, bold)))
	if cells <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= cells {
		return s
	}
	return runewidth.Truncate(s, cells, ellipsis)
}

func cellWidth(size float64, bold bool) float64 {
	if bold {
		return size * boldCellAdvance
	}
	return size * cellAdvance
}

func lineBox(size float64) float64 {
	return math.Ceil(size * lineHeight)
}
