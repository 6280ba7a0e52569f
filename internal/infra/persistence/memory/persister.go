// Package memory provides an in-process snapshot persister for tests and
// ephemeral environments.
package memory

import (
	"context"
	"sync"

	"citycore/pkg/domain"
)

var _ domain.Persister = (*Persister)(nil)

// Persister keeps the last saved snapshot in memory.
type Persister struct {
	mu       sync.Mutex
	snapshot domain.Buildings
	saved    bool
	saves    int
}

// New returns a persister with nothing saved.
func New() *Persister { return &Persister{} }

// NewWithSnapshot returns a persister whose first Load yields snapshot.
func NewWithSnapshot(snapshot domain.Buildings) *Persister {
	return &Persister{snapshot: snapshot.Clone(), saved: true}
}

// Load implements domain.Persister.
func (p *Persister) Load(context.Context) (domain.Buildings, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.saved {
		return nil, false, nil
	}
	return p.snapshot.Clone(), true, nil
}

// Save implements domain.Persister.
func (p *Persister) Save(_ context.Context, snapshot domain.Buildings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = snapshot.Clone()
	p.saved = true
	p.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (p *Persister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
