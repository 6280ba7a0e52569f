// Package sqlite persists the building snapshot to an embedded SQLite database
// as a JSON payload in a single-row state table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"citycore/pkg/domain"
)

const (
	// DefaultPath is used when no path is configured.
	DefaultPath = "citycore.db"
	bucket      = "buildings"
)

var _ domain.Persister = (*Persister)(nil)

// Persister upserts the whole snapshot on every save.
type Persister struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) the database at path and ensures the state table.
func New(ctx context.Context, path string) (*Persister, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Persister{db: db, path: path}, nil
}

// Load implements domain.Persister.
func (p *Persister) Load(ctx context.Context) (domain.Buildings, bool, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, bucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select state: %w", err)
	}
	if len(payload) == 0 {
		return nil, false, nil
	}
	var snapshot domain.Buildings
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", bucket, err)
	}
	return snapshot, true, nil
}

// Save implements domain.Persister.
func (p *Persister) Save(ctx context.Context, snapshot domain.Buildings) (retErr error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DB exposes the underlying sql.DB for tests.
func (p *Persister) DB() *sql.DB { return p.db }

// Path returns the configured database path.
func (p *Persister) Path() string { return p.path }

// Close releases the database handle.
func (p *Persister) Close() error { return p.db.Close() }
