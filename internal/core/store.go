// Package core owns the building state and the operations that mutate it.
package core

import (
	"context"
	"fmt"
	"sync"

	"citycore/pkg/domain"
)

// Store holds every building and elevator record. All methods are safe for
// concurrent use; each one holds the store lock for its whole
// read-modify-write, including the snapshot save.
type Store struct {
	mu        sync.Mutex
	buildings domain.Buildings
	persister domain.Persister
	clock     Clock
	logger    Logger
	metrics   MetricsRecorder
	events    ElevatorEventRecorder
}

// NewStore constructs a store and hydrates it once from the configured
// persister. A failed or empty load leaves the store empty.
func NewStore(ctx context.Context, opts ...StoreOption) *Store {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.events == nil {
		o.events = NewLogElevatorEventRecorder(o.logger)
	}
	s := &Store{
		buildings: make(domain.Buildings),
		persister: o.persister,
		clock:     o.clock,
		logger:    o.logger,
		metrics:   o.metrics,
		events:    o.events,
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	if s.persister == nil {
		return
	}
	start := s.clock.Now()
	snapshot, ok, err := s.persister.Load(ctx)
	s.metrics.Observe(ctx, "load", err == nil, s.clock.Now().Sub(start))
	if err != nil {
		s.logger.Warn("load snapshot failed, starting empty", "error", err)
		return
	}
	if !ok || snapshot == nil {
		s.logger.Debug("no snapshot to load")
		return
	}
	s.buildings = snapshot.Clone()
	s.logger.Info("snapshot loaded", "buildings", len(s.buildings))
}

// mutate runs fn against a working copy of the state and commits it only when
// fn succeeds. The committed state is then persisted.
func (s *Store) mutate(ctx context.Context, operation string, fn func(working domain.Buildings) error) error {
	start := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.buildings.Clone()
	if err := fn(working); err != nil {
		s.metrics.Observe(ctx, operation, false, s.clock.Now().Sub(start))
		s.logger.Debug("store operation rejected", "operation", operation, "error", err)
		return err
	}
	s.buildings = working
	s.persistLocked(ctx)
	s.metrics.Observe(ctx, operation, true, s.clock.Now().Sub(start))
	return nil
}

// persistLocked hands the committed snapshot to the persister. Failures are
// reported, never returned. The save outlives the caller's cancellation since
// the commit already happened.
func (s *Store) persistLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.saveLocked(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error("persist snapshot", "error", err)
	}
}

func (s *Store) saveLocked(ctx context.Context) error {
	start := s.clock.Now()
	err := s.persister.Save(ctx, s.buildings.Clone())
	s.metrics.Observe(ctx, "persist", err == nil, s.clock.Now().Sub(start))
	return err
}

// Flush saves the current snapshot and reports the persister's error.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persister == nil {
		return nil
	}
	if err := s.saveLocked(ctx); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	return nil
}

// Buildings returns a deep copy of every building.
func (s *Store) Buildings() domain.Buildings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildings.Clone()
}

// Snapshot returns the canonical snapshot handed to persisters.
func (s *Store) Snapshot() domain.Buildings {
	return s.Buildings()
}

// Building returns a copy of the building at addr.
func (s *Store) Building(addr string) (domain.Building, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buildings[addr]
	if !ok {
		return domain.Building{}, false
	}
	return b.Clone(), true
}

// Elevator returns the elevator idx in the building at addr.
func (s *Store) Elevator(addr, idx string) (domain.Elevator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buildings[addr]
	if !ok {
		return domain.Elevator{}, false
	}
	e, ok := b.Elevators[idx]
	return e, ok
}

// AddBuildings inserts every building. Nothing is inserted if any address is
// already present.
func (s *Store) AddBuildings(ctx context.Context, buildings domain.Buildings) error {
	return s.mutate(ctx, "add_buildings", func(working domain.Buildings) error {
		for addr, b := range buildings {
			if _, exists := working[addr]; exists {
				return fmt.Errorf("building %q: %w", addr, domain.ErrBuildingExists)
			}
			working[addr] = b.Clone()
		}
		return nil
	})
}

// AddElevators inserts every elevator into the building at addr. Nothing is
// inserted if any index is already present.
func (s *Store) AddElevators(ctx context.Context, elevators domain.Elevators, addr string) error {
	return s.mutate(ctx, "add_elevators", func(working domain.Buildings) error {
		b, err := buildingIn(working, addr)
		if err != nil {
			return err
		}
		for idx, e := range elevators {
			if _, exists := b.Elevators[idx]; exists {
				return fmt.Errorf("building %q elevator %q: %w", addr, idx, domain.ErrElevatorExists)
			}
			b.Elevators[idx] = e
		}
		return nil
	})
}

// UpdateBuildings replaces every listed building. Nothing changes if any
// address is unknown.
func (s *Store) UpdateBuildings(ctx context.Context, buildings domain.Buildings) error {
	return s.mutate(ctx, "update_buildings", func(working domain.Buildings) error {
		for addr, b := range buildings {
			if _, exists := working[addr]; !exists {
				return fmt.Errorf("building %q: %w", addr, domain.ErrBuildingNotFound)
			}
			working[addr] = b.Clone()
		}
		return nil
	})
}

// UpdateBuilding takes floorCount and ground from in and merges its elevators
// per index. Every index in in must already exist on the building, and every
// resulting elevator must sit inside the new floor range.
func (s *Store) UpdateBuilding(ctx context.Context, in domain.Building, addr string) error {
	return s.mutate(ctx, "update_building", func(working domain.Buildings) error {
		cur, err := buildingIn(working, addr)
		if err != nil {
			return err
		}
		for idx := range in.Elevators {
			if _, exists := cur.Elevators[idx]; !exists {
				return fmt.Errorf("building %q elevator %q: %w", addr, idx, domain.ErrElevatorNotFound)
			}
		}
		for idx, e := range in.Elevators {
			cur.Elevators[idx] = e
		}
		cur.FloorCount = in.FloorCount
		cur.Ground = in.Ground
		for idx, e := range cur.Elevators {
			if !cur.HasFloor(e.Floor) {
				return fmt.Errorf("building %q elevator %q floor %d outside [%d, %d]: %w",
					addr, idx, e.Floor, cur.MinFloor(), cur.MaxFloor(), domain.ErrFloorOutOfRange)
			}
		}
		working[addr] = cur
		return nil
	})
}

// UpdateElevator replaces elevator idx of the building at addr. The new floor
// must lie within the building's range.
func (s *Store) UpdateElevator(ctx context.Context, in domain.Elevator, addr, idx string) error {
	return s.mutate(ctx, "update_elevator", func(working domain.Buildings) error {
		return updateElevatorIn(working, in, addr, idx)
	})
}

// AddOrUpdateBuildings sets every building wholesale, replacing the elevators
// of existing ones.
func (s *Store) AddOrUpdateBuildings(ctx context.Context, buildings domain.Buildings) error {
	return s.mutate(ctx, "add_or_update_buildings", func(working domain.Buildings) error {
		for addr, b := range buildings {
			working[addr] = b.Clone()
		}
		return nil
	})
}

// AddOrUpdateElevators sets every elevator of the building at addr per index.
func (s *Store) AddOrUpdateElevators(ctx context.Context, elevators domain.Elevators, addr string) error {
	return s.mutate(ctx, "add_or_update_elevators", func(working domain.Buildings) error {
		b, err := buildingIn(working, addr)
		if err != nil {
			return err
		}
		for idx, e := range elevators {
			b.Elevators[idx] = e
		}
		return nil
	})
}

// DeleteBuildings removes every building.
func (s *Store) DeleteBuildings(ctx context.Context) error {
	return s.mutate(ctx, "delete_buildings", func(working domain.Buildings) error {
		clear(working)
		return nil
	})
}

// DeleteBuilding removes the building at addr.
func (s *Store) DeleteBuilding(ctx context.Context, addr string) error {
	return s.mutate(ctx, "delete_building", func(working domain.Buildings) error {
		if _, err := buildingIn(working, addr); err != nil {
			return err
		}
		delete(working, addr)
		return nil
	})
}

// DeleteElevator removes elevator idx from the building at addr.
func (s *Store) DeleteElevator(ctx context.Context, addr, idx string) error {
	return s.mutate(ctx, "delete_elevator", func(working domain.Buildings) error {
		b, err := buildingIn(working, addr)
		if err != nil {
			return err
		}
		if _, exists := b.Elevators[idx]; !exists {
			return fmt.Errorf("building %q elevator %q: %w", addr, idx, domain.ErrElevatorNotFound)
		}
		delete(b.Elevators, idx)
		return nil
	})
}

// buildingIn looks addr up in a working copy. The returned building shares its
// elevator map with working, which is never nil after Clone.
func buildingIn(working domain.Buildings, addr string) (domain.Building, error) {
	b, ok := working[addr]
	if !ok {
		return domain.Building{}, fmt.Errorf("building %q: %w", addr, domain.ErrBuildingNotFound)
	}
	return b, nil
}

func updateElevatorIn(working domain.Buildings, in domain.Elevator, addr, idx string) error {
	b, err := buildingIn(working, addr)
	if err != nil {
		return err
	}
	if _, exists := b.Elevators[idx]; !exists {
		return fmt.Errorf("building %q elevator %q: %w", addr, idx, domain.ErrElevatorNotFound)
	}
	if !b.HasFloor(in.Floor) {
		return fmt.Errorf("floor %d outside [%d, %d]: %w", in.Floor, b.MinFloor(), b.MaxFloor(), domain.ErrFloorOutOfRange)
	}
	b.Elevators[idx] = in
	return nil
}
