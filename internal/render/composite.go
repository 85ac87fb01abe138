package render

import (
	"image"

	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/jwulff/sprite-go/internal/viewport"
)

// Composite clears dst and draws the visible layers of frame in ascending
// z-order, each cropped to the viewport, scaled by its zoom and drawn at the
// layer's opacity. The surface opacity is restored to 1 afterwards.
func Composite(dst Surface, frame *domain.Frame, view viewport.State) {
	dst.Clear()
	if frame == nil || view.Zoom < 1 {
		return
	}
	defer dst.SetOpacity(1)

	crop := view.Rect.Image()
	for _, l := range frame.VisibleLayers() {
		raster := frame.Raster(l)
		if raster == nil {
			continue
		}
		src := raster.Image()
		sr := crop.Intersect(src.Bounds())
		if sr.Empty() {
			continue
		}
		dr := image.Rectangle{
			Min: sr.Min.Sub(crop.Min).Mul(view.Zoom),
			Max: sr.Max.Sub(crop.Min).Mul(view.Zoom),
		}
		dst.SetOpacity(l.Opacity())
		dst.DrawScaled(src, sr, dr)
	}
}

// Flatten composites the whole canvas of frame at zoom 1 into a new image.
// The caller may hand the result back with PutImage.
func Flatten(frame *domain.Frame, width, height int) *image.RGBA {
	s := NewRGBASurface(width, height)
	Composite(s, frame, viewport.State{
		Rect: domain.Rect{Width: width, Height: height},
		Zoom: 1,
	})
	return s.Image()
}
