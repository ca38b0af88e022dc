// Package memory provides in-process reference implementations of the
// circuit store, capability registry, recovery registry, and executor
// ports.
package memory

import (
	"context"
	"sync"

	"github.com/Strob0t/AgentRelay/internal/port/circuitstore"
)

// CircuitStore keeps circuit records in a process-local map. Safe for
// concurrent use; the coordinator remains the single writer.
type CircuitStore struct {
	mu   sync.RWMutex
	recs map[string]circuitstore.Record
}

// NewCircuitStore creates an empty in-memory circuit store.
func NewCircuitStore() *CircuitStore {
	return &CircuitStore{recs: make(map[string]circuitstore.Record)}
}

// Get returns the record for an operation, if present.
func (s *CircuitStore) Get(_ context.Context, operation string) (circuitstore.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[operation]
	return rec, ok, nil
}

// Put inserts or replaces the record for rec.Operation.
func (s *CircuitStore) Put(_ context.Context, rec circuitstore.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.Operation] = rec
	return nil
}

// Delete removes the record for an operation.
func (s *CircuitStore) Delete(_ context.Context, operation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, operation)
	return nil
}

// Len returns the number of tracked operations. Used by the health
// endpoint.
func (s *CircuitStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}
