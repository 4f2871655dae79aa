package recency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"btroute/internal/config"
	"btroute/internal/device"
)

// Store manages recency persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the recency database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("recency store requires config")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.StateDir, "recency.db"))
}

// OpenPath opens the store at an explicit database path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, now: time.Now}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) applySchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS device_connections (
    address TEXT PRIMARY KEY,
    last_connected_at INTEGER NOT NULL,
    connected INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_device_connections_recency
    ON device_connections (last_connected_at DESC);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// RecordConnected upserts the device with a fresh connection timestamp.
func (s *Store) RecordConnected(ctx context.Context, addr device.MacAddress) error {
	if addr.IsNil() {
		return errors.New("record connected: address required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO device_connections (address, last_connected_at, connected)
VALUES (?, ?, 1)
ON CONFLICT(address) DO UPDATE SET last_connected_at = excluded.last_connected_at, connected = 1`,
		addr.String(), s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("record connected: %w", err)
	}
	return nil
}

// RecordDisconnected marks the device disconnected, preserving its recency
// history.
func (s *Store) RecordDisconnected(ctx context.Context, addr device.MacAddress) error {
	if addr.IsNil() {
		return errors.New("record disconnected: address required")
	}
	_, err := s.db.ExecContext(ctx, `UPDATE device_connections SET connected = 0 WHERE address = ?`, addr.String())
	if err != nil {
		return fmt.Errorf("record disconnected: %w", err)
	}
	return nil
}

// MostRecentlyConnected returns the candidate with the freshest connection
// timestamp. Candidates with no recorded history are ignored; the boolean is
// false when none of the candidates have been seen.
func (s *Store) MostRecentlyConnected(ctx context.Context, candidates []device.MacAddress) (device.MacAddress, bool, error) {
	if len(candidates) == 0 {
		return device.MacAddress{}, false, nil
	}

	placeholders := make([]string, 0, len(candidates))
	args := make([]any, 0, len(candidates))
	for _, addr := range candidates {
		if addr.IsNil() {
			continue
		}
		placeholders = append(placeholders, "?")
		args = append(args, addr.String())
	}
	if len(args) == 0 {
		return device.MacAddress{}, false, nil
	}

	query := fmt.Sprintf(`
SELECT address FROM device_connections
WHERE address IN (%s)
ORDER BY last_connected_at DESC
LIMIT 1`, strings.Join(placeholders, ","))

	var raw string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return device.MacAddress{}, false, nil
	}
	if err != nil {
		return device.MacAddress{}, false, fmt.Errorf("query most recent: %w", err)
	}

	addr, err := device.ParseMAC(raw)
	if err != nil {
		return device.MacAddress{}, false, fmt.Errorf("parse stored address: %w", err)
	}
	return addr, true, nil
}
