package render

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/jwulff/sprite-go/internal/domain"
)

// ASCIILegend explains the glyphs written by WriteASCII.
const ASCIILegend = "Legend: █=bright ▓=medium ▒=dim ░=faint ·=very dim (space)=off"

// Glyph maps a color to a block character by brightness over black.
func Glyph(c domain.Color) string {
	switch b := Brightness(c); {
	case b > 200:
		return "█"
	case b > 150:
		return "▓"
	case b > 100:
		return "▒"
	case b > 50:
		return "░"
	case b > 10:
		return "·"
	default:
		return " "
	}
}

// WriteASCII renders img as a bordered block-character preview.
func WriteASCII(w io.Writer, img image.Image) error {
	b := img.Bounds()
	var sb strings.Builder

	sb.WriteString("  ┌")
	sb.WriteString(strings.Repeat("─", b.Dx()))
	sb.WriteString("┐\n")

	for y := b.Min.Y; y < b.Max.Y; y++ {
		fmt.Fprintf(&sb, "%2d│", y-b.Min.Y)
		for x := b.Min.X; x < b.Max.X; x++ {
			sb.WriteString(Glyph(domain.ColorFromColor(img.At(x, y))))
		}
		sb.WriteString("│\n")
	}

	sb.WriteString("  └")
	sb.WriteString(strings.Repeat("─", b.Dx()))
	sb.WriteString("┘\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
