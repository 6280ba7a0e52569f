// Package file persists the building snapshot as a single JSON document.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"citycore/pkg/domain"
)

// DefaultPath is used when no path is configured.
const DefaultPath = "saved-data.json"

var _ domain.Persister = (*Persister)(nil)

// Persister overwrites the whole document on every save.
type Persister struct {
	path string
}

// New returns a persister for path (DefaultPath when empty).
func New(path string) *Persister {
	if path == "" {
		path = DefaultPath
	}
	return &Persister{path: path}
}

// Path returns the document location.
func (p *Persister) Path() string { return p.path }

// Load implements domain.Persister. A missing or empty file is not an error.
func (p *Persister) Load(context.Context) (domain.Buildings, bool, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot %s: %w", p.path, err)
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	var snapshot domain.Buildings
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, false, fmt.Errorf("decode snapshot %s: %w", p.path, err)
	}
	return snapshot, true, nil
}

// Save implements domain.Persister. The document is written to a temporary
// file in the same directory and renamed over the previous one.
func (p *Persister) Save(_ context.Context, snapshot domain.Buildings) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".saved-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", p.path, err)
	}
	return nil
}
