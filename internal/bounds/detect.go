// Package bounds finds the smallest rectangle enclosing the non-transparent
// pixels of an RGBA buffer.
//
// Buffers below Options.SampleThreshold pixels are swept exactly. Larger
// buffers are scanned on a coarse grid and each edge is then refined at full
// resolution within one grid stride. The sampled path can miss an isolated
// opaque pixel that falls between grid points and outside every refinement
// window; this trades worst-case exactness for bounded latency.
package bounds

import (
	"math"

	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/jwulff/sprite-go/internal/logging"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSampleThreshold is the pixel count at which sampling kicks in.
	DefaultSampleThreshold = 2_000_000
	// DefaultSampleTarget is the approximate number of grid samples taken.
	DefaultSampleTarget = 500_000
)

// Options tune the choice between the exact and sampled algorithms.
type Options struct {
	SampleThreshold int
	SampleTarget    int
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		SampleThreshold: DefaultSampleThreshold,
		SampleTarget:    DefaultSampleTarget,
	}
}

// ApplyDefaults fills zero fields.
func (o *Options) ApplyDefaults() {
	if o.SampleThreshold <= 0 {
		o.SampleThreshold = DefaultSampleThreshold
	}
	if o.SampleTarget <= 0 {
		o.SampleTarget = DefaultSampleTarget
	}
}

// Detect returns the bounding rectangle of pixels with alpha > 0, or nil when
// there are none or the input is malformed.
func Detect(width, height int, buf []byte) *domain.Rect {
	return DetectWithOptions(width, height, buf, DefaultOptions())
}

// DetectWithOptions is Detect with explicit thresholds.
func DetectWithOptions(width, height int, buf []byte, opts Options) *domain.Rect {
	if !valid(width, height, buf) {
		return nil
	}
	opts.ApplyDefaults()

	total := width * height
	if total < opts.SampleThreshold {
		logging.Logger().Debug("bounds exact", "width", width, "height", height)
		return Exact(width, height, buf)
	}

	stride := Stride(total, opts.SampleTarget)
	logging.Logger().Debug("bounds sampled", "width", width, "height", height, "stride", stride)
	return Sampled(width, height, buf, stride)
}

func valid(width, height int, buf []byte) bool {
	if width <= 0 || height <= 0 || buf == nil {
		return false
	}
	// len(buf) >= width*height*BytesPerPixel, without overflowing.
	return len(buf)/domain.BytesPerPixel/width >= height
}

// Stride returns ceil(sqrt(total/target)), at least 1.
func Stride(total, target int) int {
	if target <= 0 {
		target = DefaultSampleTarget
	}
	s := int(math.Ceil(math.Sqrt(float64(total) / float64(target))))
	if s < 1 {
		return 1
	}
	return s
}

// scanner answers alpha questions about a row-major RGBA buffer.
type scanner struct {
	width, height int
	buf           []byte
}

func (s scanner) opaque(x, y int) bool {
	return s.buf[(y*s.width+x)*domain.BytesPerPixel+3] > 0
}

func (s scanner) rowHasOpaque(y, x0, x1 int) bool {
	for x := x0; x <= x1; x++ {
		if s.opaque(x, y) {
			return true
		}
	}
	return false
}

func (s scanner) colHasOpaque(x, y0, y1 int) bool {
	for y := y0; y <= y1; y++ {
		if s.opaque(x, y) {
			return true
		}
	}
	return false
}

// Exact sweeps rows top-down and bottom-up, then columns left-to-right and
// right-to-left within the found row range.
func Exact(width, height int, buf []byte) *domain.Rect {
	if !valid(width, height, buf) {
		return nil
	}
	s := scanner{width: width, height: height, buf: buf}

	top := -1
	for y := 0; y < height; y++ {
		if s.rowHasOpaque(y, 0, width-1) {
			top = y
			break
		}
	}
	if top < 0 {
		return nil
	}

	bottom := top
	for y := height - 1; y > top; y-- {
		if s.rowHasOpaque(y, 0, width-1) {
			bottom = y
			break
		}
	}

	left := -1
	for x := 0; x < width; x++ {
		if s.colHasOpaque(x, top, bottom) {
			left = x
			break
		}
	}
	if left < 0 {
		return nil
	}

	right := left
	for x := width - 1; x > left; x-- {
		if s.colHasOpaque(x, top, bottom) {
			right = x
			break
		}
	}

	return &domain.Rect{X: left, Y: top, Width: right - left + 1, Height: bottom - top + 1}
}

// Sampled scans every stride-th row and column, then refines each edge at full
// resolution within ±stride of its approximate position.
func Sampled(width, height int, buf []byte, stride int) *domain.Rect {
	if !valid(width, height, buf) {
		return nil
	}
	if stride < 1 {
		stride = 1
	}
	s := scanner{width: width, height: height, buf: buf}

	top, bottom, left, right := -1, -1, -1, -1
	for y := 0; y < height; y += stride {
		for x := 0; x < width; x += stride {
			if !s.opaque(x, y) {
				continue
			}
			if top < 0 {
				top, bottom, left, right = y, y, x, x
				continue
			}
			bottom = y
			left = min(left, x)
			right = max(right, x)
		}
	}
	if top < 0 {
		return nil
	}

	// Rows first: column refinement is restricted to the refined row range.
	var rows errgroup.Group
	rows.Go(func() error {
		for y := max(0, top-stride); y <= min(height-1, top+stride); y++ {
			if s.rowHasOpaque(y, 0, width-1) {
				top = y
				break
			}
		}
		return nil
	})
	rows.Go(func() error {
		for y := min(height-1, bottom+stride); y >= max(0, bottom-stride); y-- {
			if s.rowHasOpaque(y, 0, width-1) {
				bottom = y
				break
			}
		}
		return nil
	})
	_ = rows.Wait()

	var cols errgroup.Group
	cols.Go(func() error {
		for x := max(0, left-stride); x <= min(width-1, left+stride); x++ {
			if s.colHasOpaque(x, top, bottom) {
				left = x
				break
			}
		}
		return nil
	})
	cols.Go(func() error {
		for x := min(width-1, right+stride); x >= max(0, right-stride); x-- {
			if s.colHasOpaque(x, top, bottom) {
				right = x
				break
			}
		}
		return nil
	})
	_ = cols.Wait()

	return &domain.Rect{X: left, Y: top, Width: right - left + 1, Height: bottom - top + 1}
}
