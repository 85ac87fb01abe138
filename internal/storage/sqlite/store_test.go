package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/jwulff/sprite-go/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewMemoryStore(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	assert.NotNil(t, store)
}

func TestNewFileStore(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore(tmpDir + "/test.db")
	require.NoError(t, err)
	defer store.Close()

	assert.NotNil(t, store)
}

// Device tests

func TestSaveAndGetDevice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	device := storage.NewDevice("dev-1", "192.168.1.100", "Test Device", "pixoo64")

	err := store.SaveDevice(ctx, device)
	require.NoError(t, err)

	retrieved, err := store.GetDevice(ctx, "dev-1")
	require.NoError(t, err)

	assert.Equal(t, device.ID, retrieved.ID)
	assert.Equal(t, device.IP, retrieved.IP)
	assert.Equal(t, device.Name, retrieved.Name)
	assert.Equal(t, device.Type, retrieved.Type)
}

func TestGetDeviceNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetDevice(ctx, "nonexistent")
	assert.True(t, storage.IsNotFound(err))
}

func TestGetDevices(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Save multiple devices
	_ = store.SaveDevice(ctx, storage.NewDevice("dev-1", "192.168.1.100", "Device 1", "pixoo64"))
	_ = store.SaveDevice(ctx, storage.NewDevice("dev-2", "192.168.1.101", "Device 2", "pixoo64"))

	devices, err := store.GetDevices(ctx)
	require.NoError(t, err)

	assert.Len(t, devices, 2)
}

func TestDeleteDevice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	device := storage.NewDevice("dev-1", "192.168.1.100", "Test Device", "pixoo64")
	_ = store.SaveDevice(ctx, device)

	err := store.DeleteDevice(ctx, "dev-1")
	require.NoError(t, err)

	_, err = store.GetDevice(ctx, "dev-1")
	assert.True(t, storage.IsNotFound(err))
}

// Project tests

func newTestProject(t *testing.T) *domain.Project {
	t.Helper()
	p := domain.NewProject("Walk Cycle", 4, 3)
	bg, err := p.AddLayer("bg", "Background")
	require.NoError(t, err)
	bg.Buffer.Fill(domain.PackRGB(10, 20, 30))

	fg, err := p.AddLayer("fg", "Sprite")
	require.NoError(t, err)
	fg.SetOpacity(0.5)
	fg.SetVisibleAt(1, false)
	fg.Buffer.SetPixel(2, 1, domain.Pack(255, 0, 0, 128))

	_, err = p.AddFrame(0, 120*time.Millisecond)
	require.NoError(t, err)
	f, err := p.AddFrame(1, 80*time.Millisecond, "fg", "bg")
	require.NoError(t, err)
	override := domain.NewPixelBuffer(4, 3)
	override.SetPixel(0, 0, domain.PackRGB(1, 2, 3))
	f.Rasters["fg"] = override
	return p
}

func TestSaveAndGetProject(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := newTestProject(t)

	require.NoError(t, store.SaveProject(ctx, p))

	got, err := store.GetProject(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Walk Cycle", got.Name)
	assert.Equal(t, 4, got.Width)
	assert.Equal(t, 3, got.Height)
	require.Len(t, got.Layers, 2)

	bg, ok := got.Layer("bg")
	require.True(t, ok)
	assert.Equal(t, p.Layers[0].Buffer.Packed(), bg.Buffer.Packed())
	assert.Equal(t, 0, bg.ZIndex)

	fg, ok := got.Layer("fg")
	require.True(t, ok)
	assert.Equal(t, 1, fg.ZIndex)
	assert.Equal(t, 0.5, fg.Opacity())
	assert.False(t, fg.VisibleAt(1))
	assert.True(t, fg.VisibleAt(0))
	c, _ := fg.Buffer.GetPixel(2, 1)
	assert.Equal(t, domain.Pack(255, 0, 0, 128), c)

	assert.Equal(t, []int{0, 1}, got.Animation.Keys())
	f0, _ := got.Animation.Get(0)
	assert.Equal(t, 120*time.Millisecond, f0.Duration)
	require.Len(t, f0.Layers, 2)
	assert.Same(t, bg, f0.Layers[0])

	f1, _ := got.Animation.Get(1)
	assert.Equal(t, 80*time.Millisecond, f1.Duration)
	assert.Equal(t, "fg", f1.Layers[0].ID)
	require.Contains(t, f1.Rasters, "fg")
	c, _ = f1.Raster(fg).GetPixel(0, 0)
	assert.Equal(t, domain.PackRGB(1, 2, 3), c)
	assert.Same(t, bg.Buffer, f1.Raster(bg))
}

func TestSaveProjectReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := newTestProject(t)
	require.NoError(t, store.SaveProject(ctx, p))

	p.Name = "Run Cycle"
	p.Layers = p.Layers[:1]
	p.Animation.Remove(1)
	require.NoError(t, store.SaveProject(ctx, p))

	got, err := store.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Run Cycle", got.Name)
	assert.Len(t, got.Layers, 1)
	assert.Equal(t, []int{0}, got.Animation.Keys())
}

func TestGetProjectNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetProject(context.Background(), "nonexistent")
	assert.True(t, storage.IsNotFound(err))
}

func TestListProjects(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := newTestProject(t)
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := domain.NewProject("Empty", 8, 8)
	require.NoError(t, store.SaveProject(ctx, older))
	require.NoError(t, store.SaveProject(ctx, newer))

	list, err := store.ListProjects(ctx)
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 0, list[0].Layers)
	assert.Equal(t, older.ID, list[1].ID)
	assert.Equal(t, 2, list[1].Layers)
	assert.Equal(t, 2, list[1].Frames)
}

func TestDeleteProject(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := newTestProject(t)
	require.NoError(t, store.SaveProject(ctx, p))

	require.NoError(t, store.DeleteProject(ctx, p.ID))

	_, err := store.GetProject(ctx, p.ID)
	assert.True(t, storage.IsNotFound(err))
	list, err := store.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFileStorePersists(t *testing.T) {
	path := t.TempDir() + "/sprites.db"
	ctx := context.Background()
	p := newTestProject(t)

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveProject(ctx, p))
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Layers, 2)
}

// Config tests

func TestSetAndGetConfig(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.SetConfig(ctx, "timezone", "America/Los_Angeles")
	require.NoError(t, err)

	value, err := store.GetConfig(ctx, "timezone")
	require.NoError(t, err)

	assert.Equal(t, "America/Los_Angeles", value)
}

func TestGetConfigNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetConfig(ctx, "nonexistent")
	assert.True(t, storage.IsNotFound(err))
}

func TestDeleteConfig(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.SetConfig(ctx, "key", "value")

	err := store.DeleteConfig(ctx, "key")
	require.NoError(t, err)

	_, err = store.GetConfig(ctx, "key")
	assert.True(t, storage.IsNotFound(err))
}

func TestUpdateConfig(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.SetConfig(ctx, "key", "value1")
	_ = store.SetConfig(ctx, "key", "value2")

	value, err := store.GetConfig(ctx, "key")
	require.NoError(t, err)

	assert.Equal(t, "value2", value)
}
