// Package viewport maps the logical canvas onto an integer-zoomed window of
// the workspace.
package viewport

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/jwulff/sprite-go/internal/domain"
)

// DefaultWheelFactor is the zoom multiplier applied per wheel notch.
const DefaultWheelFactor = 1.1

// ErrInvalidConfig is returned by New for unusable dimensions or zoom bounds.
var ErrInvalidConfig = errors.New("invalid viewport config")

// Config describes the canvas, the workspace it is shown in, and zoom limits.
type Config struct {
	CanvasWidth     int
	CanvasHeight    int
	WorkspaceWidth  int
	WorkspaceHeight int
	MinZoom         int
	MaxZoom         int
	// Zoom is the initial zoom, also restored by Reset. Zero means MinZoom.
	Zoom        int
	WheelFactor float64
	// MinWheelStep makes every wheel notch move at least one zoom level.
	// Off by default: a notch that rounds back to the current zoom is a no-op.
	MinWheelStep bool
}

// State is a snapshot of what a renderer needs: the visible canvas rectangle
// and the zoom it is scaled by.
type State struct {
	Rect domain.Rect
	Zoom int
}

// SurfaceSize is the size in screen pixels of a surface showing s.
func (s State) SurfaceSize() image.Point {
	return image.Pt(s.Rect.Width*s.Zoom, s.Rect.Height*s.Zoom)
}

// Viewport tracks zoom, canvas offset, visible size and an independent
// screen-space pan. It is not safe for concurrent use; hosts pass State
// snapshots to other goroutines.
type Viewport struct {
	canvasW, canvasH       int
	workspaceW, workspaceH int
	minZoom, maxZoom       int
	initialZoom            int
	factor                 float64
	minStep                bool

	zoom   int
	offset image.Point
	pan    image.Point
	width  int
	height int
}

// New validates cfg and returns a viewport at the initial zoom with zero offset.
func New(cfg Config) (*Viewport, error) {
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, fmt.Errorf("%w: canvas %dx%d", ErrInvalidConfig, cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.WorkspaceWidth < 0 || cfg.WorkspaceHeight < 0 {
		return nil, fmt.Errorf("%w: workspace %dx%d", ErrInvalidConfig, cfg.WorkspaceWidth, cfg.WorkspaceHeight)
	}
	if cfg.MinZoom < 1 || cfg.MaxZoom < cfg.MinZoom {
		return nil, fmt.Errorf("%w: zoom range [%d,%d]", ErrInvalidConfig, cfg.MinZoom, cfg.MaxZoom)
	}
	if cfg.WheelFactor <= 1 {
		cfg.WheelFactor = DefaultWheelFactor
	}

	v := &Viewport{
		canvasW:    cfg.CanvasWidth,
		canvasH:    cfg.CanvasHeight,
		workspaceW: cfg.WorkspaceWidth,
		workspaceH: cfg.WorkspaceHeight,
		minZoom:    cfg.MinZoom,
		maxZoom:    cfg.MaxZoom,
		factor:     cfg.WheelFactor,
		minStep:    cfg.MinWheelStep,
	}
	v.initialZoom = v.clampZoom(cfg.Zoom)
	v.zoom = v.initialZoom
	v.updateSize()
	return v, nil
}

// Zoom returns the current zoom.
func (v *Viewport) Zoom() int { return v.zoom }

// Offset returns the canvas coordinate of the viewport's top-left corner.
func (v *Viewport) Offset() image.Point { return v.offset }

// Pan returns the screen-space pan.
func (v *Viewport) Pan() image.Point { return v.pan }

// Size returns the visible width and height in canvas pixels.
func (v *Viewport) Size() (int, int) { return v.width, v.height }

// Rect returns the visible canvas rectangle.
func (v *Viewport) Rect() domain.Rect {
	return domain.Rect{X: v.offset.X, Y: v.offset.Y, Width: v.width, Height: v.height}
}

// State returns a snapshot of the rectangle and zoom.
func (v *Viewport) State() State {
	return State{Rect: v.Rect(), Zoom: v.zoom}
}

func (v *Viewport) clampZoom(z int) int {
	if z < v.minZoom {
		return v.minZoom
	}
	if z > v.maxZoom {
		return v.maxZoom
	}
	return z
}

func (v *Viewport) updateSize() {
	v.width = min(v.canvasW, v.workspaceW/v.zoom)
	v.height = min(v.canvasH, v.workspaceH/v.zoom)
	v.offset = v.clampOffset(v.offset)
}

func (v *Viewport) clampOffset(p image.Point) image.Point {
	return image.Pt(
		clamp(p.X, 0, v.canvasW-v.width),
		clamp(p.Y, 0, v.canvasH-v.height),
	)
}

// Resize recomputes the visible size for a new workspace. The offset only
// moves as far as needed to keep the viewport on the canvas.
func (v *Viewport) Resize(workspaceW, workspaceH int) {
	v.workspaceW = max(0, workspaceW)
	v.workspaceH = max(0, workspaceH)
	v.updateSize()
}

// SetZoom clamps z and keeps the viewport centered on the same canvas point
// where the canvas allows it.
func (v *Viewport) SetZoom(z int) {
	z = v.clampZoom(z)
	if z == v.zoom {
		return
	}
	// Doubled centre keeps the arithmetic in integers.
	cx2 := 2*v.offset.X + v.width
	cy2 := 2*v.offset.Y + v.height

	v.zoom = z
	v.width = min(v.canvasW, v.workspaceW/v.zoom)
	v.height = min(v.canvasH, v.workspaceH/v.zoom)
	v.offset = v.clampOffset(image.Pt((cx2-v.width)/2, (cy2-v.height)/2))
}

// ZoomIn increases zoom by one step.
func (v *Viewport) ZoomIn() { v.SetZoom(v.zoom + 1) }

// ZoomOut decreases zoom by one step.
func (v *Viewport) ZoomOut() { v.SetZoom(v.zoom - 1) }

// Reset restores the initial zoom, zero offset and zero pan.
func (v *Viewport) Reset() {
	v.zoom = v.initialZoom
	v.offset = image.Point{}
	v.pan = image.Point{}
	v.updateSize()
}

// SetPan sets the screen-space pan applied before the canvas offset.
func (v *Viewport) SetPan(x, y int) {
	v.pan = image.Pt(x, y)
}

// PanBy scrolls the canvas offset by (dx, dy) canvas pixels, clamped, and
// returns the delta actually applied.
func (v *Viewport) PanBy(dx, dy int) image.Point {
	before := v.offset
	v.offset = v.clampOffset(v.offset.Add(image.Pt(dx, dy)))
	return v.offset.Sub(before)
}

// CanvasPoint returns the exact canvas-space position under a screen pointer.
func (v *Viewport) CanvasPoint(px, py int) (float64, float64) {
	z := float64(v.zoom)
	return float64(v.offset.X) + float64(px-v.pan.X)/z,
		float64(v.offset.Y) + float64(py-v.pan.Y)/z
}

// ScreenToCanvas returns the canvas pixel under a screen pointer.
func (v *Viewport) ScreenToCanvas(px, py int) image.Point {
	x, y := v.CanvasPoint(px, py)
	return image.Pt(int(math.Floor(x)), int(math.Floor(y)))
}

// ZoomToCursor zooms one wheel notch in (direction > 0) or out (direction < 0)
// keeping the canvas point under the pointer fixed, and returns the offset
// delta it applied. The new zoom is round(zoom × factor^±1), clamped; when
// that equals the current zoom nothing changes and the delta is zero.
func (v *Viewport) ZoomToCursor(px, py, direction int) image.Point {
	if direction == 0 {
		return image.Point{}
	}
	cx, cy := v.CanvasPoint(px, py)

	step := 1
	exp := 1.0
	if direction < 0 {
		step, exp = -1, -1
	}
	z := int(math.Round(float64(v.zoom) * math.Pow(v.factor, exp)))
	if z == v.zoom && v.minStep {
		z += step
	}
	z = v.clampZoom(z)
	if z == v.zoom {
		return image.Point{}
	}

	before := v.offset
	v.zoom = z
	v.width = min(v.canvasW, v.workspaceW/v.zoom)
	v.height = min(v.canvasH, v.workspaceH/v.zoom)

	nz := float64(z)
	v.offset = v.clampOffset(image.Pt(
		int(math.Round(cx-float64(px-v.pan.X)/nz)),
		int(math.Round(cy-float64(py-v.pan.Y)/nz)),
	))
	return v.offset.Sub(before)
}

func clamp(n, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return max(lo, min(n, hi))
}
