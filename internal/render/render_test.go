package render

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLerpColor(t *testing.T) {
	a := domain.Pack(0, 0, 0, 0)
	b := domain.Pack(200, 100, 50, 255)

	assert.Equal(t, a, LerpColor(a, b, -1))
	assert.Equal(t, b, LerpColor(a, b, 2))
	assert.Equal(t, domain.Pack(100, 50, 25, 127), LerpColor(a, b, 0.5))
}

func TestDimColor(t *testing.T) {
	c := domain.Pack(200, 100, 50, 77)

	assert.Equal(t, domain.Pack(100, 50, 25, 77), DimColor(c, 0.5))
	assert.Equal(t, domain.Pack(0, 0, 0, 77), DimColor(c, 0))
	assert.Equal(t, c, DimColor(c, 1))
}

func TestOverBlack(t *testing.T) {
	r, g, b := OverBlack(domain.PackRGB(255, 128, 0))
	assert.Equal(t, [3]uint8{255, 128, 0}, [3]uint8{r, g, b})

	r, g, b = OverBlack(domain.Pack(255, 255, 255, 0))
	assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, "█", Glyph(ColorWhite))
	assert.Equal(t, " ", Glyph(ColorBlack))
	assert.Equal(t, " ", Glyph(domain.Transparent))
	assert.Equal(t, "▒", Glyph(domain.PackRGB(128, 128, 128)))
}

func TestWriteASCII(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 255})
	img.SetNRGBA(2, 1, color.NRGBA{255, 255, 255, 255})

	var buf bytes.Buffer
	require.NoError(t, WriteASCII(&buf, img))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "  ┌───┐", lines[0])
	assert.Equal(t, " 0│█  │", lines[1])
	assert.Equal(t, " 1│  █│", lines[2])
	assert.Equal(t, "  └───┘", lines[3])
}

func TestImagePool(t *testing.T) {
	p := NewImagePool()

	img := p.Get(image.Pt(3, 2))
	require.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	img.Pix[0] = 42
	p.Put(img)

	again := p.Get(image.Pt(3, 2))
	assert.Equal(t, image.Rect(0, 0, 3, 2), again.Bounds())
	assert.Equal(t, uint8(0), again.Pix[0])

	p.Put(nil)
	p.Put(image.NewRGBA(image.Rect(0, 0, 9, 9)))
}
