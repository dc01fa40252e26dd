package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultSQLitePath is used when SQLITE_PATH is unset.
const DefaultSQLitePath = "data/tabletop_rooms.db"

// SQLite keeps the registry in a local file for single-host deployments.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the database at dbPath. ":memory:" is accepted.
func NewSQLite(ctx context.Context, dbPath string) (*SQLite, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		dbPath = DefaultSQLitePath
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	initCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, pragma := range []string{`PRAGMA busy_timeout = 5000;`, `PRAGMA journal_mode = WAL;`} {
		if _, err := db.ExecContext(initCtx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(initCtx, `
CREATE TABLE IF NOT EXISTS rooms (
    room_name  TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create rooms table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) RegisterRoom(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO rooms (room_name, created_at) VALUES (?, ?)
ON CONFLICT(room_name) DO UPDATE SET created_at = excluded.created_at`,
		name, time.Now().UTC().UnixMilli())
	return err
}

func (s *SQLite) DeregisterRoom(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE room_name = ?`, name)
	return err
}

func (s *SQLite) Rooms(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT room_name, created_at FROM rooms ORDER BY room_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.Name, &ms); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
