package core

import (
	"context"
	"fmt"
	"time"

	"citycore/pkg/domain"
)

// ElevatorEventKind names a step of a go-to-floor command.
type ElevatorEventKind string

const (
	EventDoorsClosing ElevatorEventKind = "closes doors"
	EventArrived      ElevatorEventKind = "arrives at floor"
	EventDoorsOpening ElevatorEventKind = "open doors"
)

// ElevatorEvent is emitted for each observable step of a completed go-to-floor command.
type ElevatorEvent struct {
	Address    string
	Elevator   string
	Kind       ElevatorEventKind
	Floor      int
	OccurredAt time.Time
}

// Message renders the event as a single human-readable line.
func (e ElevatorEvent) Message() string {
	if e.Kind == EventArrived {
		return fmt.Sprintf("Building %s, Elevator %s, %s %d.", e.Address, e.Elevator, e.Kind, e.Floor)
	}
	return fmt.Sprintf("Building %s, Elevator %s, %s.", e.Address, e.Elevator, e.Kind)
}

// ElevatorEventRecorder receives go-to-floor events in emission order.
type ElevatorEventRecorder interface {
	RecordElevatorEvent(ctx context.Context, event ElevatorEvent)
}

// LogElevatorEventRecorder writes every event to a Logger at info level.
type LogElevatorEventRecorder struct {
	logger Logger
}

// NewLogElevatorEventRecorder returns a recorder writing to logger.
func NewLogElevatorEventRecorder(logger Logger) *LogElevatorEventRecorder {
	if logger == nil {
		logger = noopLogger{}
	}
	return &LogElevatorEventRecorder{logger: logger}
}

// RecordElevatorEvent implements ElevatorEventRecorder.
func (r *LogElevatorEventRecorder) RecordElevatorEvent(_ context.Context, event ElevatorEvent) {
	r.logger.Info(event.Message(),
		"address", event.Address,
		"elevator", event.Elevator,
		"event", string(event.Kind),
		"floor", event.Floor,
	)
}

// GoToFloor moves an active elevator to floor and opens its doors. The move is
// applied through the same range check as UpdateElevator; events are emitted
// only after the new state is committed.
func (s *Store) GoToFloor(ctx context.Context, addr, idx string, floor int) error {
	var prior domain.Elevator
	err := s.mutate(ctx, "go_to_floor", func(working domain.Buildings) error {
		b, err := buildingIn(working, addr)
		if err != nil {
			return err
		}
		cur, ok := b.Elevators[idx]
		if !ok {
			return fmt.Errorf("building %q elevator %q: %w", addr, idx, domain.ErrElevatorNotFound)
		}
		if !cur.Active {
			return fmt.Errorf("building %q elevator %q: %w", addr, idx, domain.ErrElevatorInactive)
		}
		prior = cur
		target := cur
		target.Floor = floor
		target.Status = domain.StatusDoorsOpen
		return updateElevatorIn(working, target, addr, idx)
	})
	if err != nil {
		return err
	}

	at := s.clock.Now()
	var events []ElevatorEvent
	if prior.Status == domain.StatusDoorsOpen {
		events = append(events, ElevatorEvent{Kind: EventDoorsClosing, Floor: prior.Floor})
	}
	events = append(events,
		ElevatorEvent{Kind: EventArrived, Floor: floor},
		ElevatorEvent{Kind: EventDoorsOpening, Floor: floor},
	)
	for _, ev := range events {
		ev.Address = addr
		ev.Elevator = idx
		ev.OccurredAt = at
		s.events.RecordElevatorEvent(ctx, ev)
	}
	return nil
}
