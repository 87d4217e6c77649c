package graph

import (
	"context"
	"sync"
)

// MemoryStore keeps quads in memory. It backs tests and embedded use; the
// Postgres store is the production implementation.
type MemoryStore struct {
	mu    sync.RWMutex
	quads []Quad
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends the quads.
func (s *MemoryStore) Insert(ctx context.Context, quads []Quad) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quads = append(s.quads, quads...)
	return nil
}

// Find returns all quads matching the pattern in insertion order.
func (s *MemoryStore) Find(ctx context.Context, pattern Pattern) ([]Quad, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := []Quad{}
	for _, quad := range s.quads {
		if pattern.Matches(quad) {
			matches = append(matches, quad)
		}
	}
	return matches, nil
}

// Len returns the number of stored quads.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quads)
}
