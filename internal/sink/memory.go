package sink

import (
	"context"
	"sync"
)

// Memory is an in-memory sink used by tests and dry runs. It mirrors
// the full-replace contract exactly: each write swaps the destination's
// entire content.
type Memory struct {
	mu     sync.Mutex
	tables map[string]Stored
}

// Stored is one destination's visible content.
type Stored struct {
	Table     Table
	Freshness string
	Writes    int // total ReplaceTable calls for this destination
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]Stored)}
}

func (m *Memory) ReplaceTable(ctx context.Context, destinationID string, table Table, freshnessMarker string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.tables[destinationID]
	m.tables[destinationID] = Stored{
		Table:     table,
		Freshness: freshnessMarker,
		Writes:    prev.Writes + 1,
	}
	return nil
}

// Get returns the visible content of a destination.
func (m *Memory) Get(destinationID string) (Stored, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.tables[destinationID]
	return s, ok
}
