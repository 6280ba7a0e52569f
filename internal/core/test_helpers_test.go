package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"citycore/internal/infra/persistence/memory"
	"citycore/pkg/domain"
)

type captureLogger struct {
	mu    sync.Mutex
	calls []string
}

func (c *captureLogger) record(level, msg string) {
	c.mu.Lock()
	c.calls = append(c.calls, level+":"+msg)
	c.mu.Unlock()
}

func (c *captureLogger) Debug(msg string, _ ...any) { c.record("d", msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.record("i", msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.record("w", msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.record("e", msg) }

func (c *captureLogger) has(entry string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call == entry {
			return true
		}
	}
	return false
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	mu    sync.Mutex
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	c.calls = append(c.calls, metricsCall{op: op, success: success})
	c.mu.Unlock()
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type captureEvents struct {
	events []ElevatorEvent
}

func (c *captureEvents) RecordElevatorEvent(_ context.Context, e ElevatorEvent) {
	c.events = append(c.events, e)
}

type failingPersister struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingPersister) Load(context.Context) (domain.Buildings, bool, error) {
	return nil, false, f.loadErr
}

func (f *failingPersister) Save(context.Context, domain.Buildings) error {
	f.saves++
	return f.saveErr
}

var errBoom = errors.New("boom")

// sampleBuildings mirrors the canonical fixture: building 1 has 15 floors with
// ground at 2, elevator 1 active at floor 3 with its doors open.
func sampleBuildings() domain.Buildings {
	return domain.Buildings{
		"1": {
			FloorCount: 15,
			Ground:     2,
			Elevators: domain.Elevators{
				"1": {Active: true, Status: domain.StatusDoorsOpen, Floor: 3, Action: "idle"},
				"2": {Active: false, Status: domain.StatusDoorsClosed, Floor: 0, Action: "broken"},
			},
		},
		"2": {FloorCount: 3, Ground: 0, Elevators: domain.Elevators{}},
	}
}

func newSeededStore(t *testing.T, opts ...StoreOption) (*Store, *memory.Persister) {
	t.Helper()
	p := memory.NewWithSnapshot(sampleBuildings())
	s := NewStore(context.Background(), append([]StoreOption{WithPersister(p)}, opts...)...)
	return s, p
}
