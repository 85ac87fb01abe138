package bounds

import (
	"testing"

	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRGBA(w, h int) []byte {
	return make([]byte, w*h*domain.BytesPerPixel)
}

func setAlpha(buf []byte, w, x, y int, a byte) {
	buf[(y*w+x)*domain.BytesPerPixel+3] = a
}

func fillBlock(buf []byte, w, x0, y0, bw, bh int) {
	for y := y0; y < y0+bh; y++ {
		for x := x0; x < x0+bw; x++ {
			setAlpha(buf, w, x, y, 255)
		}
	}
}

// sampledOpts forces the sampled path with stride 4 on a 100x100 buffer.
var sampledOpts = Options{SampleThreshold: 1000, SampleTarget: 1000}

func TestDetectSinglePixel(t *testing.T) {
	buf := newRGBA(10, 10)
	setAlpha(buf, 10, 3, 4, 1)

	r := Detect(10, 10, buf)

	require.NotNil(t, r)
	assert.Equal(t, domain.Rect{X: 3, Y: 4, Width: 1, Height: 1}, *r)
}

func TestDetectTransparent(t *testing.T) {
	assert.Nil(t, Detect(10, 10, newRGBA(10, 10)))
}

func TestDetectIgnoresColorWithoutAlpha(t *testing.T) {
	buf := newRGBA(4, 4)
	buf[0], buf[1], buf[2] = 255, 255, 255

	assert.Nil(t, Detect(4, 4, buf))
}

func TestDetectMalformed(t *testing.T) {
	assert.Nil(t, Detect(0, 10, newRGBA(10, 10)))
	assert.Nil(t, Detect(10, -1, newRGBA(10, 10)))
	assert.Nil(t, Detect(10, 10, nil))
	assert.Nil(t, Detect(10, 10, make([]byte, 10*10*4-1)))
}

func TestDetectCorners(t *testing.T) {
	buf := newRGBA(16, 8)
	setAlpha(buf, 16, 0, 7, 255)
	setAlpha(buf, 16, 15, 0, 255)

	r := Detect(16, 8, buf)

	require.NotNil(t, r)
	assert.Equal(t, domain.Rect{X: 0, Y: 0, Width: 16, Height: 8}, *r)
}

func TestDetectFullyOpaque(t *testing.T) {
	buf := newRGBA(5, 3)
	fillBlock(buf, 5, 0, 0, 5, 3)

	r := Detect(5, 3, buf)

	require.NotNil(t, r)
	assert.Equal(t, domain.Rect{X: 0, Y: 0, Width: 5, Height: 3}, *r)
}

func TestStride(t *testing.T) {
	assert.Equal(t, 1, Stride(100, 500_000))
	assert.Equal(t, 2, Stride(2_000_000, 500_000))
	assert.Equal(t, 3, Stride(4_000_000, 500_000))
	assert.Equal(t, 4, Stride(10_000, 1000))
	assert.Equal(t, 1, Stride(0, 0))
}

func TestDetectSampledBlock(t *testing.T) {
	buf := newRGBA(100, 100)
	fillBlock(buf, 100, 10, 20, 20, 20)

	r := DetectWithOptions(100, 100, buf, sampledOpts)

	require.NotNil(t, r)
	assert.Equal(t, domain.Rect{X: 10, Y: 20, Width: 20, Height: 20}, *r)
	assert.Equal(t, Exact(100, 100, buf), r)
}

func TestDetectSampledMatchesExactForBlocks(t *testing.T) {
	tests := []struct {
		name         string
		x, y, bw, bh int
	}{
		{"origin", 0, 0, 8, 8},
		{"far corner", 90, 92, 10, 8},
		{"wide", 3, 50, 94, 5},
		{"tall", 47, 1, 6, 97},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := newRGBA(100, 100)
			fillBlock(buf, 100, tt.x, tt.y, tt.bw, tt.bh)

			assert.Equal(t, Exact(100, 100, buf), DetectWithOptions(100, 100, buf, sampledOpts))
		})
	}
}

func TestDetectSampledMissesIsolatedPixel(t *testing.T) {
	buf := newRGBA(100, 100)
	fillBlock(buf, 100, 40, 40, 4, 4)
	// Off the stride-4 grid and outside every refinement window.
	setAlpha(buf, 100, 1, 1, 255)

	sampled := DetectWithOptions(100, 100, buf, sampledOpts)
	exact := Exact(100, 100, buf)

	require.NotNil(t, sampled)
	require.NotNil(t, exact)
	assert.Equal(t, domain.Rect{X: 40, Y: 40, Width: 4, Height: 4}, *sampled)
	assert.Equal(t, domain.Rect{X: 1, Y: 1, Width: 43, Height: 43}, *exact)
}

func TestDetectSampledNothingOnGrid(t *testing.T) {
	buf := newRGBA(100, 100)
	setAlpha(buf, 100, 2, 2, 255)

	assert.Nil(t, DetectWithOptions(100, 100, buf, sampledOpts))
}

func TestSampledStrideOneIsExact(t *testing.T) {
	buf := newRGBA(20, 20)
	setAlpha(buf, 20, 7, 3, 255)
	setAlpha(buf, 20, 12, 18, 255)

	assert.Equal(t, Exact(20, 20, buf), Sampled(20, 20, buf, 1))
	assert.Equal(t, Exact(20, 20, buf), Sampled(20, 20, buf, 0))
}

func TestDetectOverflowingDimensions(t *testing.T) {
	huge := 1 << 32
	assert.Nil(t, Detect(huge, huge, []byte{}))
	assert.Nil(t, Exact(huge, huge, []byte{}))
	assert.Nil(t, Sampled(huge, huge, []byte{}, 4))
	assert.Nil(t, Detect(huge, 1, make([]byte, 16)))
}
