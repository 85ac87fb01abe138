// Package sqlite provides a SQLite implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/jwulff/sprite-go/internal/storage"

	_ "modernc.org/sqlite"
)

// Store is a SQLite implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// NewMemoryStore creates an in-memory SQLite store.
func NewMemoryStore() (*Store, error) {
	return newStore(":memory:")
}

// NewFileStore creates a file-based SQLite store.
func NewFileStore(path string) (*Store, error) {
	return newStore(path)
}

func newStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Project methods

// SaveProject replaces the stored project, its layers and its frames.
func (s *Store) SaveProject(ctx context.Context, p *domain.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO projects (id, name, width, height, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Width, p.Height, p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	if err := deleteChildren(ctx, tx, p.ID); err != nil {
		return err
	}

	for _, l := range p.Layers {
		visJSON, err := json.Marshal(l.Visibility())
		if err != nil {
			return fmt.Errorf("failed to marshal visibility: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO layers (project_id, id, name, z_index, opacity, visibility, pixels)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, p.ID, l.ID, l.Name, l.ZIndex, l.Opacity(), string(visJSON), storage.EncodePixels(l.Buffer.Packed())); err != nil {
			return fmt.Errorf("failed to save layer %s: %w", l.ID, err)
		}
	}

	if p.Animation != nil {
		for _, f := range p.Animation.Frames() {
			if err := saveFrame(ctx, tx, p.ID, f); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func saveFrame(ctx context.Context, tx *sql.Tx, projectID string, f *domain.Frame) error {
	ids := make([]string, 0, len(f.Layers))
	for _, l := range f.Layers {
		ids = append(ids, l.ID)
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal layer ids: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO frames (project_id, key, duration_ms, layer_ids)
		VALUES (?, ?, ?, ?)
	`, projectID, f.Key, f.Duration.Milliseconds(), string(idsJSON)); err != nil {
		return fmt.Errorf("failed to save frame %d: %w", f.Key, err)
	}

	for layerID, buf := range f.Rasters {
		if buf == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO frame_rasters (project_id, frame_key, layer_id, pixels)
			VALUES (?, ?, ?, ?)
		`, projectID, f.Key, layerID, storage.EncodePixels(buf.Packed())); err != nil {
			return fmt.Errorf("failed to save raster %d/%s: %w", f.Key, layerID, err)
		}
	}
	return nil
}

func deleteChildren(ctx context.Context, tx *sql.Tx, projectID string) error {
	for _, table := range []string{"layers", "frames", "frame_rasters"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE project_id = ?", projectID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// GetProject loads a project with its layers, frames and raster overrides.
func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	p := &domain.Project{Animation: domain.NewAnimation()}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, width, height, created_at, updated_at FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Width, &p.Height, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Resource: "project", ID: id}
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadLayers(ctx, p); err != nil {
		return nil, err
	}
	rasters, err := s.loadRasters(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.loadFrames(ctx, p, rasters); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) loadLayers(ctx context.Context, p *domain.Project) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, z_index, opacity, visibility, pixels
		FROM layers WHERE project_id = ? ORDER BY z_index, id
	`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			layerID, name, visJSON string
			zIndex                 int
			opacity                float64
			pixels                 []byte
		)
		if err := rows.Scan(&layerID, &name, &zIndex, &opacity, &visJSON, &pixels); err != nil {
			return err
		}

		l := domain.NewLayer(layerID, name, p.Width, p.Height)
		l.ZIndex = zIndex
		l.SetOpacity(opacity)

		var vis map[int]bool
		if err := json.Unmarshal([]byte(visJSON), &vis); err != nil {
			return fmt.Errorf("failed to unmarshal visibility: %w", err)
		}
		for key, v := range vis {
			l.SetVisibleAt(key, v)
		}

		if l.Buffer, err = decodeBuffer(p.Width, p.Height, pixels); err != nil {
			return fmt.Errorf("failed to decode layer %s: %w", layerID, err)
		}
		p.Layers = append(p.Layers, l)
	}
	return rows.Err()
}

type rasterKey struct {
	frame int
	layer string
}

func (s *Store) loadRasters(ctx context.Context, p *domain.Project) (map[rasterKey]*domain.PixelBuffer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT frame_key, layer_id, pixels FROM frame_rasters WHERE project_id = ?
	`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rasters := make(map[rasterKey]*domain.PixelBuffer)
	for rows.Next() {
		var k rasterKey
		var pixels []byte
		if err := rows.Scan(&k.frame, &k.layer, &pixels); err != nil {
			return nil, err
		}
		buf, err := decodeBuffer(p.Width, p.Height, pixels)
		if err != nil {
			return nil, fmt.Errorf("failed to decode raster %d/%s: %w", k.frame, k.layer, err)
		}
		rasters[k] = buf
	}
	return rasters, rows.Err()
}

func (s *Store) loadFrames(ctx context.Context, p *domain.Project, rasters map[rasterKey]*domain.PixelBuffer) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, duration_ms, layer_ids FROM frames WHERE project_id = ? ORDER BY key
	`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key int
		var durationMS int64
		var idsJSON string
		if err := rows.Scan(&key, &durationMS, &idsJSON); err != nil {
			return err
		}

		var ids []string
		if err := json.Unmarshal([]byte(idsJSON), &ids); err != nil {
			return fmt.Errorf("failed to unmarshal layer ids: %w", err)
		}
		layers := make([]*domain.Layer, 0, len(ids))
		for _, id := range ids {
			if l, ok := p.Layer(id); ok {
				layers = append(layers, l)
			}
		}

		f := domain.NewFrame(key, time.Duration(durationMS)*time.Millisecond, layers...)
		for k, buf := range rasters {
			if k.frame == key {
				f.Rasters[k.layer] = buf
			}
		}
		p.Animation.Put(f)
	}
	return rows.Err()
}

func decodeBuffer(width, height int, data []byte) (*domain.PixelBuffer, error) {
	pix, err := storage.DecodePixels(data)
	if err != nil {
		return nil, err
	}
	return domain.NewPixelBufferFromPacked(width, height, pix)
}

// ListProjects returns summaries ordered by most recently updated.
func (s *Store) ListProjects(ctx context.Context) ([]*storage.ProjectSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.width, p.height, p.created_at, p.updated_at,
			(SELECT COUNT(*) FROM layers l WHERE l.project_id = p.id),
			(SELECT COUNT(*) FROM frames f WHERE f.project_id = p.id)
		FROM projects p ORDER BY p.updated_at DESC, p.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*storage.ProjectSummary
	for rows.Next() {
		var ps storage.ProjectSummary
		if err := rows.Scan(&ps.ID, &ps.Name, &ps.Width, &ps.Height, &ps.CreatedAt, &ps.UpdatedAt, &ps.Layers, &ps.Frames); err != nil {
			return nil, err
		}
		projects = append(projects, &ps)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project and everything it owns.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteChildren(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// Device methods

func (s *Store) SaveDevice(ctx context.Context, device *storage.Device) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO devices (id, ip, name, type, created_at, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)
	`, device.ID, device.IP, device.Name, device.Type, device.CreatedAt, device.LastSeen)
	return err
}

func (s *Store) GetDevice(ctx context.Context, id string) (*storage.Device, error) {
	var device storage.Device
	err := s.db.QueryRowContext(ctx, `
		SELECT id, ip, name, type, created_at, last_seen FROM devices WHERE id = ?
	`, id).Scan(&device.ID, &device.IP, &device.Name, &device.Type, &device.CreatedAt, &device.LastSeen)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Resource: "device", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (s *Store) GetDevices(ctx context.Context) ([]*storage.Device, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ip, name, type, created_at, last_seen FROM devices ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*storage.Device
	for rows.Next() {
		var device storage.Device
		if err := rows.Scan(&device.ID, &device.IP, &device.Name, &device.Type, &device.CreatedAt, &device.LastSeen); err != nil {
			return nil, err
		}
		devices = append(devices, &device)
	}
	return devices, rows.Err()
}

func (s *Store) DeleteDevice(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	return err
}

// Config methods

func (s *Store) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", storage.ErrNotFound{Resource: "config", ID: key}
	}
	return value, err
}

func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO config (key, value, updated_at)
		VALUES (?, ?, ?)
	`, key, value, time.Now())
	return err
}

func (s *Store) DeleteConfig(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM config WHERE key = ?", key)
	return err
}

// Verify interface compliance
var _ storage.Store = (*Store)(nil)
