// Package domain contains the core sprite types: packed colors, pixel
// buffers, layers, frames, animations and projects.
package domain

import (
	"fmt"
	"image"
	"sync"
)

// BytesPerPixel is the number of bytes per pixel in RGBA byte form.
const BytesPerPixel = 4

// Ink is what a tool writes into a pixel: a color, or no color (erase).
type Ink struct {
	Color Color
	Set   bool
}

// NoInk erases the target pixel.
var NoInk = Ink{}

// InkOf returns ink that writes c.
func InkOf(c Color) Ink {
	return Ink{Color: c, Set: true}
}

// SetPixelFunc writes ink at canvas coordinates. Implementations bounds-check.
type SetPixelFunc func(x, y int, ink Ink)

// PixelBuffer is a width×height raster of packed colors.
// It allows a single writer and many readers at a time.
type PixelBuffer struct {
	Width  int
	Height int

	mu  sync.RWMutex
	pix []Color
}

// NewPixelBuffer creates a fully transparent buffer.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Width:  width,
		Height: height,
		pix:    make([]Color, width*height),
	}
}

// NewPixelBufferWithColor creates a buffer filled with c.
func NewPixelBufferWithColor(width, height int, c Color) *PixelBuffer {
	b := NewPixelBuffer(width, height)
	b.Fill(c)
	return b
}

// NewPixelBufferFromPacked wraps a copy of packed pixels.
func NewPixelBufferFromPacked(width, height int, pix []Color) (*PixelBuffer, error) {
	if len(pix) != width*height {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height, len(pix))
	}
	b := NewPixelBuffer(width, height)
	copy(b.pix, pix)
	return b, nil
}

func (b *PixelBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// SetPixel sets a single pixel. Out of bounds coordinates are silently ignored.
func (b *PixelBuffer) SetPixel(x, y int, c Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.set(x, y, InkOf(c))
}

// SetInk writes ink at (x, y); NoInk makes the pixel transparent.
func (b *PixelBuffer) SetInk(x, y int, ink Ink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.set(x, y, ink)
}

func (b *PixelBuffer) set(x, y int, ink Ink) {
	if !b.inBounds(x, y) {
		return
	}
	c := Transparent
	if ink.Set {
		c = ink.Color
	}
	b.pix[y*b.Width+x] = c
}

// GetPixel returns the color at (x, y) and false when out of bounds.
func (b *PixelBuffer) GetPixel(x, y int) (Color, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.inBounds(x, y) {
		return Transparent, false
	}
	return b.pix[y*b.Width+x], true
}

// Edit runs fn with exclusive access. Every write made through set becomes
// visible to readers at once when fn returns.
func (b *PixelBuffer) Edit(fn func(set SetPixelFunc)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.set)
}

// Fill fills the whole buffer with c.
func (b *PixelBuffer) Fill(c Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.pix {
		b.pix[i] = c
	}
}

// Clear makes every pixel transparent.
func (b *PixelBuffer) Clear() {
	b.Fill(Transparent)
}

// FillRect fills a rectangular area, clipped to the buffer.
func (b *PixelBuffer) FillRect(x, y, width, height int, c Color) {
	b.Edit(func(set SetPixelFunc) {
		ink := InkOf(c)
		for dy := 0; dy < height; dy++ {
			for dx := 0; dx < width; dx++ {
				set(x+dx, y+dy, ink)
			}
		}
	})
}

// Clone creates a deep copy.
func (b *PixelBuffer) Clone() *PixelBuffer {
	return &PixelBuffer{
		Width:  b.Width,
		Height: b.Height,
		pix:    b.Packed(),
	}
}

// Packed returns a copy of the packed pixels in row-major order.
func (b *PixelBuffer) Packed() []Color {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Color, len(b.pix))
	copy(out, b.pix)
	return out
}

// RGBA returns a new row-major RGBA byte slice. The caller owns it.
func (b *PixelBuffer) RGBA() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]byte, len(b.pix)*BytesPerPixel)
	for i, c := range b.pix {
		o := i * BytesPerPixel
		out[o], out[o+1], out[o+2], out[o+3] = c.Unpack()
	}
	return out
}

// Image returns a snapshot of the buffer as a non-premultiplied image.
func (b *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.RGBA(),
		Stride: b.Width * BytesPerPixel,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// OpaqueCount returns the number of pixels with alpha > 0.
func (b *PixelBuffer) OpaqueCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, c := range b.pix {
		if c.Alpha() > 0 {
			n++
		}
	}
	return n
}
