package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Project owns the layers and the animation of one sprite.
type Project struct {
	ID        string
	Name      string
	Width     int
	Height    int
	Layers    []*Layer
	Animation *Animation
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProject creates an empty project with a generated ID.
func NewProject(name string, width, height int) *Project {
	now := time.Now()
	return &Project{
		ID:        uuid.NewString(),
		Name:      name,
		Width:     width,
		Height:    height,
		Animation: NewAnimation(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddLayer appends a layer on top of the existing ones.
func (p *Project) AddLayer(id, name string) (*Layer, error) {
	if id == "" {
		return nil, fmt.Errorf("layer id is required")
	}
	if _, ok := p.Layer(id); ok {
		return nil, fmt.Errorf("layer %q already exists", id)
	}
	l := NewLayer(id, name, p.Width, p.Height)
	l.ZIndex = len(p.Layers)
	p.Layers = append(p.Layers, l)
	return l, nil
}

// Layer returns the layer with the given ID.
func (p *Project) Layer(id string) (*Layer, bool) {
	for _, l := range p.Layers {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// AddFrame creates a frame referencing the named layers, or every layer when
// none are named.
func (p *Project) AddFrame(key int, duration time.Duration, layerIDs ...string) (*Frame, error) {
	layers := append([]*Layer(nil), p.Layers...)
	if len(layerIDs) > 0 {
		layers = make([]*Layer, 0, len(layerIDs))
		for _, id := range layerIDs {
			l, ok := p.Layer(id)
			if !ok {
				return nil, fmt.Errorf("layer %q not found", id)
			}
			layers = append(layers, l)
		}
	}
	f := NewFrame(key, duration, layers...)
	p.Animation.Put(f)
	return f, nil
}
