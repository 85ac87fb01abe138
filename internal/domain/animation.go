package domain

import (
	"sort"
	"sync"
	"time"
)

// DefaultFrameDuration is used for frames created without a duration.
const DefaultFrameDuration = 100 * time.Millisecond

// Frame is one keyed step of an animation.
type Frame struct {
	Key      int
	Duration time.Duration
	// Layers references layers owned by the project.
	Layers []*Layer
	// Rasters optionally overrides a layer's backing buffer for this frame,
	// keyed by layer ID.
	Rasters map[string]*PixelBuffer
}

// NewFrame creates a frame referencing the given layers.
func NewFrame(key int, duration time.Duration, layers ...*Layer) *Frame {
	if duration <= 0 {
		duration = DefaultFrameDuration
	}
	return &Frame{
		Key:      key,
		Duration: duration,
		Layers:   layers,
		Rasters:  make(map[string]*PixelBuffer),
	}
}

// Raster returns the buffer drawn for layer l in this frame.
func (f *Frame) Raster(l *Layer) *PixelBuffer {
	if r, ok := f.Rasters[l.ID]; ok && r != nil {
		return r
	}
	return l.Buffer
}

// VisibleLayers returns the layers visible at this frame, ascending by z-index.
func (f *Frame) VisibleLayers() []*Layer {
	out := make([]*Layer, 0, len(f.Layers))
	for _, l := range f.Layers {
		if l != nil && l.VisibleAt(f.Key) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

// Animation is a keyed collection of frames. Keys order and address frames.
type Animation struct {
	mu     sync.RWMutex
	frames map[int]*Frame
}

// NewAnimation creates an animation from frames. Later frames replace earlier
// ones with the same key.
func NewAnimation(frames ...*Frame) *Animation {
	a := &Animation{frames: make(map[int]*Frame, len(frames))}
	for _, f := range frames {
		a.frames[f.Key] = f
	}
	return a
}

// Put inserts or replaces a frame.
func (a *Animation) Put(f *Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frames[f.Key] = f
}

// Remove deletes the frame with the given key.
func (a *Animation) Remove(key int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.frames, key)
}

// Get returns the frame for key.
func (a *Animation) Get(key int) (*Frame, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	f, ok := a.frames[key]
	return f, ok && f != nil
}

// Len returns the number of frames.
func (a *Animation) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.frames)
}

// Keys returns the frame keys in ascending order.
func (a *Animation) Keys() []int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	keys := make([]int, 0, len(a.frames))
	for k := range a.frames {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Frames returns the frames in key order.
func (a *Animation) Frames() []*Frame {
	keys := a.Keys()
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Frame, 0, len(keys))
	for _, k := range keys {
		out = append(out, a.frames[k])
	}
	return out
}

// TotalDuration sums the frame durations.
func (a *Animation) TotalDuration() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var total time.Duration
	for _, f := range a.frames {
		total += f.Duration
	}
	return total
}
