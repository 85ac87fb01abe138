package render

import (
	"image"
	"sync"
)

// ImagePool recycles scratch *image.RGBA values by size.
type ImagePool struct {
	mu    sync.RWMutex
	pools map[image.Point]*sync.Pool
}

var globalPool = NewImagePool()

// NewImagePool returns an empty pool.
func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

// GetImage returns a cleared image of the given size from the shared pool.
func GetImage(size image.Point) *image.RGBA {
	return globalPool.Get(size)
}

// PutImage returns img to the shared pool.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// Get returns a zeroed image of the given size, allocating if none is pooled.
func (p *ImagePool) Get(size image.Point) *image.RGBA {
	p.mu.RLock()
	pool, ok := p.pools[size]
	p.mu.RUnlock()

	if !ok {
		p.mu.Lock()
		pool, ok = p.pools[size]
		if !ok {
			pool = &sync.Pool{
				New: func() any {
					return image.NewRGBA(image.Rectangle{Max: size})
				},
			}
			p.pools[size] = pool
		}
		p.mu.Unlock()
	}

	img := pool.Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

// Put hands img back for reuse. Images of sizes never requested are dropped.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, ok := p.pools[img.Rect.Size()]
	p.mu.RUnlock()

	if ok && img.Rect.Min == (image.Point{}) {
		pool.Put(img)
	}
}
