package memory

import (
	"context"
	"reflect"
	"testing"

	"citycore/pkg/domain"
)

func TestPersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := New()
	if _, ok, err := p.Load(ctx); ok || err != nil {
		t.Fatalf("fresh persister should have nothing to load: %v %v", ok, err)
	}
	snap := domain.Buildings{"1": {FloorCount: 3, Elevators: domain.Elevators{"1": {Floor: 1}}}}
	if err := p.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap["1"].Elevators["1"] = domain.Elevator{Floor: 2}

	got, ok, err := p.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if got["1"].Elevators["1"].Floor != 1 {
		t.Fatalf("persister aliases saved snapshot: %+v", got)
	}
	if p.Saves() != 1 {
		t.Fatalf("expected 1 save, got %d", p.Saves())
	}
}

func TestNewWithSnapshot(t *testing.T) {
	snap := domain.Buildings{"a": {FloorCount: 1, Elevators: domain.Elevators{}}}
	got, ok, err := NewWithSnapshot(snap).Load(context.Background())
	if err != nil || !ok || !reflect.DeepEqual(got, snap) {
		t.Fatalf("unexpected load %+v %v %v", got, ok, err)
	}
}
