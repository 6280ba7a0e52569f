// Package postgres persists the building snapshot to PostgreSQL through the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"citycore/pkg/domain"
)

const (
	defaultDriver = "pgx"
	bucket        = "buildings"
)

var _ domain.Persister = (*Persister)(nil)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Persister stores the snapshot as JSONB in the state table.
type Persister struct {
	db *sql.DB
}

// New connects to dsn and ensures the state table exists.
func New(ctx context.Context, dsn string) (*Persister, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	ddl := `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	return &Persister{db: db}, nil
}

// Load implements domain.Persister.
func (p *Persister) Load(ctx context.Context) (domain.Buildings, bool, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return nil, false, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		snapshot domain.Buildings
		found    bool
	)
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, false, fmt.Errorf("scan state: %w", err)
		}
		if name != bucket || len(payload) == 0 {
			continue
		}
		if err := json.Unmarshal(payload, &snapshot); err != nil {
			return nil, false, fmt.Errorf("decode %s: %w", bucket, err)
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate state: %w", err)
	}
	return snapshot, found, nil
}

// Save implements domain.Persister.
func (p *Persister) Save(ctx context.Context, snapshot domain.Buildings) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`, bucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// DB exposes the underlying sql.DB for tests.
func (p *Persister) DB() *sql.DB { return p.db }

// Close releases the connection pool.
func (p *Persister) Close() error { return p.db.Close() }

// OverrideSQLOpen swaps the sql.Open function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
