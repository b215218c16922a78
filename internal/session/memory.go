package session

import (
	"context"
	"sync"
)

// Memory is a minimal map-backed store for dev/testing.
type Memory struct {
	mu    sync.Mutex
	state map[string]State
}

// NewMemory creates an in-memory session store.
func NewMemory() *Memory {
	return &Memory{state: make(map[string]State)}
}

// Get loads a session state.
func (m *Memory) Get(_ context.Context, id string) (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.state[id]
	return st, ok, nil
}

// Put saves a session state.
func (m *Memory) Put(_ context.Context, id string, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[id] = st
	return nil
}

// Healthy always reports true; the map lives in-process.
func (m *Memory) Healthy(context.Context) bool { return true }
