package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps the transcript in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	lines []string
	saves int
}

// NewMemoryStore returns a MemoryStore holding a copy of lines.
func NewMemoryStore(lines []string) *MemoryStore {
	return &MemoryStore{lines: append([]string{}, lines...)}
}

func (m *MemoryStore) Load(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.lines...), nil
}

func (m *MemoryStore) Save(ctx context.Context, lines []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append([]string{}, lines...)
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryStore) Close() error {
	return nil
}
