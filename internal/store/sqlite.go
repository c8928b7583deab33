// Package store persists computed layouts in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mtp-placer/internal/diagram"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrNotFound indicates no stored layout matches.
var ErrNotFound = errors.New("store: layout not found")

const schema = `
CREATE TABLE IF NOT EXISTS layouts (
    id         TEXT PRIMARY KEY,
    diagram    TEXT NOT NULL,
    created_at TEXT NOT NULL,
    placed     INTEGER NOT NULL,
    failed     INTEGER NOT NULL,
    data       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS layouts_diagram ON layouts (diagram, created_at);
`

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Summary describes a stored layout without its results.
type Summary struct {
	ID        string    `json:"id"`
	Diagram   string    `json:"diagram"`
	CreatedAt time.Time `json:"created_at"`
	Placed    int       `json:"placed"`
	Failed    int       `json:"failed"`
}

// Store keeps layouts keyed by diagram name. Every save adds a revision.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Save stores a layout revision and returns its id.
func (s *Store) Save(ctx context.Context, l *diagram.Layout) (string, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("marshal layout: %w", err)
	}

	id := uuid.NewString()
	created := l.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO layouts (id, diagram, created_at, placed, failed, data)
        VALUES (?, ?, ?, ?, ?, ?)
    `, id, l.Diagram, created.UTC().Format(timeLayout), l.Placed, l.Failed, string(data))
	if err != nil {
		return "", fmt.Errorf("insert layout: %w", err)
	}
	return id, nil
}

// Latest returns the most recently saved layout of a diagram.
func (s *Store) Latest(ctx context.Context, diagramName string) (*diagram.Layout, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT data FROM layouts
        WHERE diagram = ?
        ORDER BY created_at DESC, rowid DESC
        LIMIT 1
    `, diagramName)
	return scanLayout(row, diagramName)
}

// Get returns a layout revision by id.
func (s *Store) Get(ctx context.Context, id string) (*diagram.Layout, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM layouts WHERE id = ?`, id)
	return scanLayout(row, id)
}

func scanLayout(row *sql.Row, key string) (*diagram.Layout, error) {
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}

	var l diagram.Layout
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		return nil, fmt.Errorf("decode layout %s: %w", key, err)
	}
	return &l, nil
}

// List returns the revisions of a diagram, newest first. An empty name
// lists every diagram.
func (s *Store) List(ctx context.Context, diagramName string) ([]Summary, error) {
	query := `SELECT id, diagram, created_at, placed, failed FROM layouts`
	var args []any
	if diagramName != "" {
		query += ` WHERE diagram = ?`
		args = append(args, diagramName)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var created string
		if err := rows.Scan(&sum.ID, &sum.Diagram, &created, &sum.Placed, &sum.Failed); err != nil {
			return nil, err
		}
		if sum.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("layout %s: bad timestamp: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes every revision of a diagram and reports how many there were.
func (s *Store) Delete(ctx context.Context, diagramName string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE diagram = ?`, diagramName)
	if err != nil {
		return 0, fmt.Errorf("delete layouts: %w", err)
	}
	return res.RowsAffected()
}
