package events

import (
	"context"
	"sync"
	"time"
)

// Publisher is the sink services emit through. Implementations must be safe
// for concurrent use. Emit failures are logged, never propagated: the event
// stream is observational and must not abort registry operations.
type Publisher interface {
	Emit(ctx context.Context, event Event)
	Close() error
}

// Memory buffers events in process. Default sink for tests and deployments
// without a broker.
type Memory struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Emit(_ context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns a snapshot of everything emitted so far.
func (m *Memory) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// ByType filters the snapshot, a convenience for assertions.
func (m *Memory) ByType(t Type) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (m *Memory) Close() error { return nil }
