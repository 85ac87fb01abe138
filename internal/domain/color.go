package domain

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/jwulff/sprite-go/internal/logging"
	"golang.org/x/image/colornames"
)

// Color is a packed RGBA color. Byte layout, least to most significant: R, G, B, A.
type Color uint32

// Transparent is the fully transparent color.
const Transparent Color = 0

var (
	// ErrInvalidHex is returned for hex strings that are not #RGB, #RRGGBB or #RRGGBBAA.
	ErrInvalidHex = errors.New("invalid hex color")
	// ErrInvalidColor is returned when a value cannot be resolved to a color.
	ErrInvalidColor = errors.New("invalid color")
)

// Pack packs four 8-bit channels into a Color.
func Pack(r, g, b, a uint8) Color {
	return Color(uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24)
}

// PackRGB packs an opaque color.
func PackRGB(r, g, b uint8) Color {
	return Pack(r, g, b, 255)
}

// Unpack splits the color into its channels.
func (c Color) Unpack() (r, g, b, a uint8) {
	return uint8(c), uint8(c >> 8), uint8(c >> 16), uint8(c >> 24)
}

// Alpha returns the alpha channel.
func (c Color) Alpha() uint8 {
	return uint8(c >> 24)
}

// NRGBA converts the color to a non-premultiplied image/color value.
func (c Color) NRGBA() color.NRGBA {
	r, g, b, a := c.Unpack()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// String returns the CSS form of the color.
func (c Color) String() string {
	return ToCSSString(c)
}

// ColorFromNRGBA packs an image/color value.
func ColorFromNRGBA(c color.NRGBA) Color {
	return Pack(c.R, c.G, c.B, c.A)
}

// ColorFromColor converts any image/color value.
func ColorFromColor(c color.Color) Color {
	return ColorFromNRGBA(color.NRGBAModel.Convert(c).(color.NRGBA))
}

// ToCSSString formats the color as rgba(r, g, b, a) with alpha as a fraction.
func ToCSSString(c Color) string {
	r, g, b, a := c.Unpack()
	alpha := math.Round(float64(a)/255*1000) / 1000
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64))
}

// ParseHex parses #RGB, #RRGGBB or #RRGGBBAA. The leading '#' is optional.
func ParseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(hex) {
	case 3, 6, 8:
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	switch len(hex) {
	case 3:
		r := uint8(v>>8&0xF) * 17
		g := uint8(v>>4&0xF) * 17
		b := uint8(v&0xF) * 17
		return PackRGB(r, g, b), nil
	case 6:
		return PackRGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
	default:
		return Pack(uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v)), nil
	}
}

// FromHex parses a hex color, falling back to opaque black when the input is
// not a recognized hex form. Use ParseHex to detect invalid input.
func FromHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		logging.Logger().Debug("hex color fallback to black", "input", s)
		return PackRGB(0, 0, 0)
	}
	return c
}

// ParseString resolves a color string: "transparent", hex forms, CSS rgb()/rgba()
// functions and CSS color names.
func ParseString(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))

	switch {
	case v == "transparent":
		return Transparent, nil
	case strings.HasPrefix(v, "#"):
		return ParseHex(v)
	case strings.HasPrefix(v, "rgb"):
		return parseCSSFunc(v)
	}

	if named, ok := colornames.Map[v]; ok {
		return Pack(named.R, named.G, named.B, named.A), nil
	}
	return 0, fmt.Errorf("%w: unknown color name %q", ErrInvalidColor, s)
}

// parseCSSFunc parses "rgb(r, g, b)" and "rgba(r, g, b, a)" with a in [0, 1].
func parseCSSFunc(v string) (Color, error) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, v)
	}
	name := v[:open]
	parts := strings.Split(v[open+1:len(v)-1], ",")

	want := 3
	if name == "rgba" {
		want = 4
	} else if name != "rgb" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, v)
	}
	if len(parts) != want {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, v)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return 0, fmt.Errorf("%w: channel %q in %q", ErrInvalidColor, parts[i], v)
		}
		ch[i] = uint8(n)
	}

	alpha := uint8(255)
	if want == 4 {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || f < 0 || f > 1 {
			return 0, fmt.Errorf("%w: alpha %q in %q", ErrInvalidColor, parts[3], v)
		}
		alpha = uint8(math.Round(f * 255))
	}
	return Pack(ch[0], ch[1], ch[2], alpha), nil
}

// Parse resolves any supported color value to a packed Color.
//
// Numbers pass through unchanged, strings go through ParseString, maps with
// r/g/b/(a) keys and image/color values are packed directly. A missing alpha
// defaults to 255.
func Parse(v any) (Color, error) {
	switch val := v.(type) {
	case Color:
		return val, nil
	case uint32:
		return Color(val), nil
	case int:
		return fromInt64(int64(val))
	case int64:
		return fromInt64(val)
	case uint:
		return fromInt64(int64(val))
	case uint64:
		if val > math.MaxUint32 {
			return 0, fmt.Errorf("%w: %d out of range", ErrInvalidColor, val)
		}
		return Color(val), nil
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidColor, val)
		}
		return fromInt64(int64(val))
	case string:
		return ParseString(val)
	case map[string]int:
		m := make(map[string]any, len(val))
		for k, n := range val {
			m[k] = n
		}
		return fromComponents(m)
	case map[string]any:
		return fromComponents(val)
	case color.Color:
		return ColorFromColor(val), nil
	case nil:
		return 0, fmt.Errorf("%w: nil", ErrInvalidColor)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidColor, v)
	}
}

func fromInt64(n int64) (Color, error) {
	if n < 0 || n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidColor, n)
	}
	return Color(uint32(n)), nil
}

func fromComponents(m map[string]any) (Color, error) {
	var ch [4]uint8
	ch[3] = 255
	for i, key := range []string{"r", "g", "b", "a"} {
		raw, ok := m[key]
		if !ok {
			if key == "a" {
				continue
			}
			return 0, fmt.Errorf("%w: missing %q component", ErrInvalidColor, key)
		}
		n, ok := componentValue(raw)
		if !ok || n < 0 || n > 255 {
			return 0, fmt.Errorf("%w: bad %q component %v", ErrInvalidColor, key, raw)
		}
		ch[i] = uint8(n)
	}
	return Pack(ch[0], ch[1], ch[2], ch[3]), nil
}

func componentValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
