// Package tool maps a tool, a pointer coordinate and brush parameters to pixel
// writes. Handlers only write through the SetPixelColor callback and never see
// canvas dimensions; the callback is responsible for bounds checks.
package tool

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/jwulff/sprite-go/internal/selection"
)

// ErrUnknownTool is returned when looking up an unregistered tool id.
var ErrUnknownTool = errors.New("unknown tool")

// Anchor says where a brush square sits relative to the pointer.
type Anchor int

const (
	// AnchorCenter centers the square on the pointer: its top-left corner is
	// at (x-size/2, y-size/2).
	AnchorCenter Anchor = iota
	// AnchorTopLeft puts the square's top-left corner on the pointer.
	AnchorTopLeft
)

func (a Anchor) String() string {
	switch a {
	case AnchorCenter:
		return "center"
	case AnchorTopLeft:
		return "top-left"
	}
	return fmt.Sprintf("Anchor(%d)", int(a))
}

// Origin returns the top-left corner of a size×size square anchored at (x, y).
func (a Anchor) Origin(x, y, size int) (int, int) {
	if a == AnchorCenter {
		return x - size/2, y - size/2
	}
	return x, y
}

// Params are the brush parameters passed to a handler.
type Params struct {
	PixelSize     int
	Color         domain.Color
	SetPixelColor domain.SetPixelFunc
}

// Handler applies a tool at one pointer coordinate.
type Handler func(x, y int, p Params)

// Tool is a named brush variant.
type Tool struct {
	ID     string
	Anchor Anchor
	// Erase writes "no color" instead of Params.Color.
	Erase bool
}

// Handler returns the tool's handler.
func (t Tool) Handler() Handler {
	return func(x, y int, p Params) {
		ink := domain.InkOf(p.Color)
		if t.Erase {
			ink = domain.NoInk
		}
		square(t.Anchor, x, y, p.PixelSize, func(px, py int) {
			p.SetPixelColor(px, py, ink)
		})
	}
}

// square visits every pixel of a size×size square. Sizes below 1 are treated as 1.
func square(anchor Anchor, x, y, size int, visit func(px, py int)) {
	if size < 1 {
		size = 1
	}
	ox, oy := anchor.Origin(x, y, size)
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			visit(ox+dx, oy+dy)
		}
	}
}

// Built-in tools. Pencil and eraser are centered; paint and erase are anchored
// at the top-left corner.
var (
	Pencil = Tool{ID: "pencil", Anchor: AnchorCenter}
	Eraser = Tool{ID: "eraser", Anchor: AnchorCenter, Erase: true}
	Paint  = Tool{ID: "paint", Anchor: AnchorTopLeft}
	Erase  = Tool{ID: "erase", Anchor: AnchorTopLeft, Erase: true}
)

var registry = map[string]Tool{
	Pencil.ID: Pencil,
	Eraser.ID: Eraser,
	Paint.ID:  Paint,
	Erase.ID:  Erase,
}

// Lookup returns the built-in tool with the given id.
func Lookup(id string) (Tool, error) {
	t, ok := registry[id]
	if !ok {
		return Tool{}, fmt.Errorf("%w: %q", ErrUnknownTool, id)
	}
	return t, nil
}

// IDs returns the registered tool ids, sorted.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Apply runs the tool once at (x, y) against buf. The write lock is held for
// the whole application so readers never observe a partial stamp.
func Apply(buf *domain.PixelBuffer, t Tool, x, y, size int, c domain.Color) {
	h := t.Handler()
	buf.Edit(func(set domain.SetPixelFunc) {
		h(x, y, Params{PixelSize: size, Color: c, SetPixelColor: set})
	})
}

// Stroke applies h at every point of the line from (x0, y0) to (x1, y1) using
// Bresenham's algorithm, so fast drags leave no gaps.
func Stroke(h Handler, x0, y0, x1, y1 int, p Params) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		h(x0, y0, p)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// ApplyStroke runs Stroke against buf under one write lock.
func ApplyStroke(buf *domain.PixelBuffer, t Tool, x0, y0, x1, y1, size int, c domain.Color) {
	h := t.Handler()
	buf.Edit(func(set domain.SetPixelFunc) {
		Stroke(h, x0, y0, x1, y1, Params{PixelSize: size, Color: c, SetPixelColor: set})
	})
}

// SelectHandler returns a handler that adds the brush square to sel instead of
// writing pixels. Params.Color and Params.SetPixelColor are ignored.
func SelectHandler(sel *selection.Selection, anchor Anchor) Handler {
	return func(x, y int, p Params) {
		square(anchor, x, y, p.PixelSize, sel.Add)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
