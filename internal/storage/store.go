// Package storage provides storage abstractions for sprite projects.
package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/jwulff/sprite-go/internal/domain"
)

// Store is the interface for persistent storage.
type Store interface {
	// Projects
	SaveProject(ctx context.Context, p *domain.Project) error
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	ListProjects(ctx context.Context) ([]*ProjectSummary, error)
	DeleteProject(ctx context.Context, id string) error

	// Configuration
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
	DeleteConfig(ctx context.Context, key string) error

	// Device management
	SaveDevice(ctx context.Context, device *Device) error
	GetDevice(ctx context.Context, id string) (*Device, error)
	GetDevices(ctx context.Context) ([]*Device, error)
	DeleteDevice(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}

// ProjectSummary describes a stored project without its pixels.
type ProjectSummary struct {
	ID        string
	Name      string
	Width     int
	Height    int
	Layers    int
	Frames    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Device represents a stored Pixoo device.
type Device struct {
	ID        string
	IP        string
	Name      string
	Type      string
	CreatedAt time.Time
	LastSeen  time.Time
}

// NewDevice creates a new device record.
func NewDevice(id, ip, name, deviceType string) *Device {
	now := time.Now()
	return &Device{
		ID:        id,
		IP:        ip,
		Name:      name,
		Type:      deviceType,
		CreatedAt: now,
		LastSeen:  now,
	}
}

// ErrNotFound is returned when a record is not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return e.Resource + " not found: " + e.ID
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}

// EncodePixels serializes packed colors as little-endian uint32s.
func EncodePixels(pix []domain.Color) []byte {
	out := make([]byte, len(pix)*4)
	for i, c := range pix {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(c))
	}
	return out
}

// DecodePixels is the inverse of EncodePixels.
func DecodePixels(data []byte) ([]domain.Color, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("pixel data length %d is not a multiple of 4", len(data))
	}
	pix := make([]domain.Color, len(data)/4)
	for i := range pix {
		pix[i] = domain.Color(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return pix, nil
}
