package sqlite

// schema contains the database schema DDL.
const schema = `
-- Devices
CREATE TABLE IF NOT EXISTS devices (
    id TEXT PRIMARY KEY,
    ip TEXT NOT NULL,
    name TEXT,
    type TEXT DEFAULT 'pixoo64',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    last_seen DATETIME
);

-- Projects
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Layers: pixels are little-endian packed colors, visibility is a JSON map
-- of frame key to bool.
CREATE TABLE IF NOT EXISTS layers (
    project_id TEXT NOT NULL,
    id TEXT NOT NULL,
    name TEXT,
    z_index INTEGER NOT NULL DEFAULT 0,
    opacity REAL NOT NULL DEFAULT 1,
    visibility TEXT NOT NULL DEFAULT '{}',
    pixels BLOB NOT NULL,
    PRIMARY KEY (project_id, id)
);

-- Frames: layer_ids is a JSON array in frame order.
CREATE TABLE IF NOT EXISTS frames (
    project_id TEXT NOT NULL,
    key INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    layer_ids TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (project_id, key)
);

-- Per-frame raster overrides
CREATE TABLE IF NOT EXISTS frame_rasters (
    project_id TEXT NOT NULL,
    frame_key INTEGER NOT NULL,
    layer_id TEXT NOT NULL,
    pixels BLOB NOT NULL,
    PRIMARY KEY (project_id, frame_key, layer_id)
);

-- Configuration
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
