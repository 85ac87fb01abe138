// Package selection tracks the set of selected canvas pixels.
package selection

import (
	"image"
	"sort"
	"sync"

	"github.com/jwulff/sprite-go/internal/domain"
)

// Selection is a deduplicated set of canvas coordinates. The zero value is
// an empty selection.
type Selection struct {
	mu     sync.RWMutex
	points map[image.Point]struct{}
}

// New creates an empty selection.
func New() *Selection {
	return &Selection{points: make(map[image.Point]struct{})}
}

// Start clears the selection.
func (s *Selection) Start() {
	s.mu.Lock()
	s.points = make(map[image.Point]struct{})
	s.mu.Unlock()
}

// Add inserts (x, y). Re-adding is a no-op; negative coordinates are ignored.
func (s *Selection) Add(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	s.mu.Lock()
	if s.points == nil {
		s.points = make(map[image.Point]struct{})
	}
	s.points[image.Pt(x, y)] = struct{}{}
	s.mu.Unlock()
}

// Contains reports whether (x, y) is selected.
func (s *Selection) Contains(x, y int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.points[image.Pt(x, y)]
	return ok
}

// Len returns the number of selected pixels.
func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// Points returns the selected coordinates ordered by row, then column.
func (s *Selection) Points() []image.Point {
	s.mu.RLock()
	out := make([]image.Point, 0, len(s.points))
	for p := range s.points {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Bounds returns the smallest rectangle enclosing the selection, or nil when empty.
func (s *Selection) Bounds() *domain.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.points) == 0 {
		return nil
	}

	first := true
	var minX, minY, maxX, maxY int
	for p := range s.points {
		if first {
			minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
			first = false
			continue
		}
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	return &domain.Rect{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}
