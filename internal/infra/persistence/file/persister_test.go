package file

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"citycore/pkg/domain"
)

func TestFilePersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "saved-data.json")
	p := New(path)
	if _, ok, err := p.Load(ctx); ok || err != nil {
		t.Fatalf("missing file should load nothing: %v %v", ok, err)
	}

	snap := domain.Buildings{"1": {FloorCount: 15, Ground: 2, Elevators: domain.Elevators{"1": {Active: true, Status: domain.StatusDoorsOpen, Floor: -2, Action: "idle"}}}}
	if err := p.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := p.Load(ctx)
	if err != nil || !ok || !reflect.DeepEqual(got, snap) {
		t.Fatalf("unexpected load %+v %v %v", got, ok, err)
	}

	if err := p.Save(ctx, domain.Buildings{}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, ok, err = p.Load(ctx)
	if err != nil || !ok || len(got) != 0 {
		t.Fatalf("overwrite not visible %+v %v %v", got, ok, err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestFilePersisterLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok, err := New(empty).Load(context.Background()); ok || err != nil {
		t.Fatalf("empty file should load nothing: %v %v", ok, err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := New(bad).Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFilePersisterDefaultPath(t *testing.T) {
	if New("").Path() != DefaultPath {
		t.Fatalf("unexpected default path")
	}
}
