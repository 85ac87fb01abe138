package domain

import "sync"

// Layer is an independently visible raster. Layers are owned by a Project and
// referenced by the frames that include them.
type Layer struct {
	ID     string
	Name   string
	ZIndex int
	Buffer *PixelBuffer

	mu      sync.RWMutex
	opacity float64
	visible map[int]bool
}

// NewLayer creates a fully opaque, transparent-filled layer.
func NewLayer(id, name string, width, height int) *Layer {
	return &Layer{
		ID:      id,
		Name:    name,
		Buffer:  NewPixelBuffer(width, height),
		opacity: 1.0,
		visible: make(map[int]bool),
	}
}

// Opacity returns the layer opacity in [0, 1].
func (l *Layer) Opacity() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.opacity
}

// SetOpacity sets the opacity, clamped to [0, 1].
func (l *Layer) SetOpacity(o float64) {
	if o < 0 {
		o = 0
	}
	if o > 1 {
		o = 1
	}
	l.mu.Lock()
	l.opacity = o
	l.mu.Unlock()
}

// VisibleAt reports whether the layer is shown in the frame with the given key.
// Frames without an explicit entry show the layer.
func (l *Layer) VisibleAt(frameKey int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.visible[frameKey]
	return !ok || v
}

// SetVisibleAt records the layer visibility for one frame.
func (l *Layer) SetVisibleAt(frameKey int, visible bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.visible == nil {
		l.visible = make(map[int]bool)
	}
	l.visible[frameKey] = visible
}

// Visibility returns a copy of the per-frame visibility map.
func (l *Layer) Visibility() map[int]bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[int]bool, len(l.visible))
	for k, v := range l.visible {
		out[k] = v
	}
	return out
}
