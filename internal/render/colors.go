package render

import "github.com/jwulff/sprite-go/internal/domain"

// Common colors.
var (
	ColorBlack = domain.PackRGB(0, 0, 0)
	ColorWhite = domain.PackRGB(255, 255, 255)
)

// LerpColor linearly interpolates between two colors, alpha included.
func LerpColor(a, b domain.Color, t float64) domain.Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	ar, ag, ab, aa := a.Unpack()
	br, bg, bb, ba := b.Unpack()
	return domain.Pack(
		lerp(ar, br, t),
		lerp(ag, bg, t),
		lerp(ab, bb, t),
		lerp(aa, ba, t),
	)
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + t*float64(int(b)-int(a)))
}

// DimColor scales the RGB channels of a color by factor (0-1), keeping alpha.
func DimColor(c domain.Color, factor float64) domain.Color {
	r, g, b, a := c.Unpack()
	if factor <= 0 {
		return domain.Pack(0, 0, 0, a)
	}
	if factor >= 1 {
		return c
	}
	return domain.Pack(
		uint8(float64(r)*factor),
		uint8(float64(g)*factor),
		uint8(float64(b)*factor),
		a,
	)
}

// OverBlack composites c onto an opaque black background.
func OverBlack(c domain.Color) (r, g, b uint8) {
	r, g, b, _ = DimColor(c, float64(c.Alpha())/255).Unpack()
	return r, g, b
}

// Brightness is the mean of the RGB channels after compositing over black.
func Brightness(c domain.Color) int {
	r, g, b := OverBlack(c)
	return (int(r) + int(g) + int(b)) / 3
}
