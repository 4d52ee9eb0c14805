package planner

import (
	"context"
	"sync"
)

// MemoryStore keeps the PlanState in memory.
type MemoryStore struct {
	mu    sync.Mutex
	state *PlanState
	saves int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (*PlanState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	return m.state.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, state *PlanState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Clone()
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
