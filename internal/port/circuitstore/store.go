// Package circuitstore defines the port for per-operation circuit records.
package circuitstore

import "context"

// State is the circuit state for one operation key.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// Record tracks failures for a single operation key.
type Record struct {
	Operation string `json:"operation"`
	Failures  int    `json:"failures"`
	State     State  `json:"state"`
	// OpenedAt is epoch milliseconds; zero unless the circuit has opened.
	OpenedAt int64 `json:"opened_at,omitempty"`
}

// Store holds circuit records keyed by operation. The reference design
// assumes single-process, single-writer semantics: the coordinator
// serializes its read-then-write cycles, so implementations only need to
// be safe for concurrent reads. A distributed implementation can replace
// this port if the coordinator is ever run across processes.
type Store interface {
	// Get returns the record for an operation. ok is false for unknown
	// keys, which callers treat as a fresh, closed circuit.
	Get(ctx context.Context, operation string) (rec Record, ok bool, err error)

	// Put inserts or replaces the record for rec.Operation.
	Put(ctx context.Context, rec Record) error

	// Delete removes the record for an operation. Deleting an unknown key
	// is not an error.
	Delete(ctx context.Context, operation string) error
}
