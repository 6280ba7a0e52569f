// Package blob persists the building snapshot as a JSON object in a blob store.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"citycore/internal/blob/core"
	"citycore/pkg/domain"
)

// DefaultKey is the object key used when none is configured.
const DefaultKey = "snapshots/buildings.json"

var _ domain.Persister = (*Persister)(nil)

// Persister writes every snapshot as a new generation object next to Key,
// named <stem>-<unixnano><ext>. Older generations are removed only after the
// new one has been stored, so a failed save leaves the previous snapshot
// loadable. Load picks the newest generation and falls back to an object
// stored at Key itself.
type Persister struct {
	store core.Store
	key   string
	stem  string
	ext   string
	now   func() time.Time

	mu   sync.Mutex
	last int64
}

// New returns a persister writing next to key (DefaultKey when empty) in store.
func New(store core.Store, key string) *Persister {
	if key == "" {
		key = DefaultKey
	}
	ext := path.Ext(key)
	return &Persister{
		store: store,
		key:   key,
		stem:  strings.TrimSuffix(key, ext),
		ext:   ext,
		now:   time.Now,
	}
}

// Key returns the base snapshot key.
func (p *Persister) Key() string { return p.key }

func (p *Persister) prefix() string { return p.stem + "-" }

func (p *Persister) isGeneration(key string) bool {
	gen, ok := strings.CutPrefix(key, p.prefix())
	if !ok {
		return false
	}
	gen, ok = strings.CutSuffix(gen, p.ext)
	if !ok || gen == "" {
		return false
	}
	for _, r := range gen {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// generations lists generation keys, oldest first.
func (p *Persister) generations(ctx context.Context) ([]string, error) {
	infos, err := p.store.List(ctx, p.prefix())
	if err != nil {
		return nil, fmt.Errorf("list snapshots %s: %w", p.prefix(), err)
	}
	var keys []string
	for _, info := range infos {
		if p.isGeneration(info.Key) {
			keys = append(keys, info.Key)
		}
	}
	// zero-padded generations sort lexically
	slices.Sort(keys)
	return keys, nil
}

// nextKey returns a generation key ordered after every key in existing, even
// when the wall clock has stepped backwards.
func (p *Persister) nextKey(existing []string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	gen := p.now().UnixNano()
	if len(existing) > 0 {
		newest := strings.TrimSuffix(strings.TrimPrefix(existing[len(existing)-1], p.prefix()), p.ext)
		if n, err := strconv.ParseInt(newest, 10, 64); err == nil && n > p.last {
			p.last = n
		}
	}
	if gen <= p.last {
		gen = p.last + 1
	}
	p.last = gen
	return fmt.Sprintf("%s%020d%s", p.prefix(), gen, p.ext)
}

// Load implements domain.Persister.
func (p *Persister) Load(ctx context.Context) (domain.Buildings, bool, error) {
	keys, err := p.generations(ctx)
	if err != nil {
		return nil, false, err
	}
	key := p.key
	if len(keys) > 0 {
		key = keys[len(keys)-1]
	}
	return p.read(ctx, key)
}

func (p *Persister) read(ctx context.Context, key string) (domain.Buildings, bool, error) {
	_, rc, err := p.store.Get(ctx, key)
	if errors.Is(err, core.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get snapshot %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	var snapshot domain.Buildings
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, false, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return snapshot, true, nil
}

// Save implements domain.Persister. Removing superseded objects is best
// effort: leftovers are always older than the stored generation.
func (p *Persister) Save(ctx context.Context, snapshot domain.Buildings) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	older, err := p.generations(ctx)
	if err != nil {
		return err
	}
	key := p.nextKey(older)
	opts := core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"buildings": fmt.Sprint(len(snapshot))},
	}
	if _, err := p.store.Put(ctx, key, bytes.NewReader(data), opts); err != nil {
		return fmt.Errorf("put snapshot %s: %w", key, err)
	}

	_, _ = p.store.Delete(ctx, p.key)
	for _, k := range older {
		_, _ = p.store.Delete(ctx, k)
	}
	return nil
}
