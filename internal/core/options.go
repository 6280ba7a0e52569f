package core

import (
	"time"

	"citycore/pkg/domain"
)

// StoreOption customises store construction.
type StoreOption func(*storeOptions)

type storeOptions struct {
	persister domain.Persister
	clock     Clock
	logger    Logger
	metrics   MetricsRecorder
	events    ElevatorEventRecorder
}

func defaultStoreOptions() storeOptions {
	return storeOptions{
		clock:   ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:  noopLogger{},
		metrics: noopMetricsRecorder{},
	}
}

// WithPersister sets the snapshot collaborator. Without one the store is purely in-memory.
func WithPersister(p domain.Persister) StoreOption {
	return func(o *storeOptions) {
		o.persister = p
	}
}

// WithClock overrides the clock used for timings and event timestamps.
func WithClock(clock Clock) StoreOption {
	return func(o *storeOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger used for persistence failures and elevator events.
func WithLogger(logger Logger) StoreOption {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsRecorder registers a recorder observing every store operation.
func WithMetricsRecorder(rec MetricsRecorder) StoreOption {
	return func(o *storeOptions) {
		if rec != nil {
			o.metrics = rec
		}
	}
}

// WithElevatorEventRecorder replaces the default logging recorder for go-to-floor events.
func WithElevatorEventRecorder(rec ElevatorEventRecorder) StoreOption {
	return func(o *storeOptions) {
		if rec != nil {
			o.events = rec
		}
	}
}
