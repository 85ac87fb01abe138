// Package render composites animation frames onto drawable surfaces.
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Surface is a drawing target sized viewportWidth*zoom by viewportHeight*zoom.
type Surface interface {
	// Size returns the surface size in screen pixels.
	Size() image.Point
	// Clear erases the surface to transparent.
	Clear()
	// SetOpacity sets the global alpha, clamped to [0,1], for later draws.
	SetOpacity(alpha float64)
	// DrawScaled draws the sr portion of src into dr, scaling with
	// nearest-neighbour sampling.
	DrawScaled(src image.Image, sr, dr image.Rectangle)
}

// RGBASurface is an in-memory Surface backed by a pooled *image.RGBA.
type RGBASurface struct {
	img     *image.RGBA
	opacity float64
}

var _ Surface = (*RGBASurface)(nil)

// NewRGBASurface returns a transparent surface of the given size.
func NewRGBASurface(width, height int) *RGBASurface {
	return &RGBASurface{
		img:     GetImage(image.Pt(max(0, width), max(0, height))),
		opacity: 1,
	}
}

// Size implements Surface.
func (s *RGBASurface) Size() image.Point { return s.img.Rect.Size() }

// Image returns the backing image. It is invalidated by Resize and Release.
func (s *RGBASurface) Image() *image.RGBA { return s.img }

// Opacity returns the current global alpha.
func (s *RGBASurface) Opacity() float64 { return s.opacity }

// Resize swaps the backing image for one of the new size. The surface is
// cleared when the size changes.
func (s *RGBASurface) Resize(width, height int) {
	size := image.Pt(max(0, width), max(0, height))
	if size == s.Size() {
		return
	}
	PutImage(s.img)
	s.img = GetImage(size)
}

// Release returns the backing image to the pool. The surface must not be
// used afterwards.
func (s *RGBASurface) Release() {
	PutImage(s.img)
	s.img = nil
}

// Clear implements Surface.
func (s *RGBASurface) Clear() {
	clear(s.img.Pix)
}

// SetOpacity implements Surface.
func (s *RGBASurface) SetOpacity(alpha float64) {
	s.opacity = max(0, min(1, alpha))
}

// DrawScaled implements Surface.
func (s *RGBASurface) DrawScaled(src image.Image, sr, dr image.Rectangle) {
	if sr.Empty() || dr.Empty() || s.opacity == 0 {
		return
	}
	var opts *draw.Options
	if s.opacity < 1 {
		opts = &draw.Options{
			DstMask: image.NewUniform(color.Alpha{A: uint8(s.opacity*255 + 0.5)}),
		}
	}
	draw.NearestNeighbor.Scale(s.img, dr, src, sr, draw.Over, opts)
}
