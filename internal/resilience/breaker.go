// Package resilience provides the per-operation circuit breaker and the
// recovery coordinator that sit between raw failures and retries.
package resilience

import (
	"context"
	"log/slog"
	"time"

	"github.com/Strob0t/AgentRelay/internal/port/circuitstore"
)

// DefaultOperation is the circuit key used when a failure carries no
// operation context.
const DefaultOperation = "unknown"

// Breaker tracks consecutive failures per operation key and opens the
// circuit for a key once a threshold is reached, preventing further calls
// until a timeout elapses. Records live behind the circuitstore port; the
// breaker serializes its own read-then-write cycles.
type Breaker struct {
	store       circuitstore.Store
	maxFailures int
	openFor     time.Duration
	now         func() time.Time // for testing
}

// NewBreaker creates a breaker that opens an operation's circuit after
// maxFailures consecutive failures and keeps it open for openFor before
// allowing a half-open trial.
func NewBreaker(store circuitstore.Store, maxFailures int, openFor time.Duration) *Breaker {
	return &Breaker{
		store:       store,
		maxFailures: maxFailures,
		openFor:     openFor,
		now:         time.Now,
	}
}

// Allow reports whether a call against the operation may proceed. An open
// circuit whose timeout has elapsed transitions to half-open and allows
// one trial call. Unknown keys are fresh, closed circuits.
func (b *Breaker) Allow(ctx context.Context, operation string) bool {
	rec, ok, err := b.store.Get(ctx, operation)
	if err != nil {
		slog.Error("circuit store get failed", "operation", operation, "error", err)
		return true
	}
	if !ok {
		return true
	}

	switch rec.State {
	case circuitstore.StateOpen:
		if b.now().UnixMilli()-rec.OpenedAt >= b.openFor.Milliseconds() {
			rec.State = circuitstore.StateHalfOpen
			b.put(ctx, rec)
			return true
		}
		return false
	case circuitstore.StateHalfOpen:
		return true
	default:
		return true
	}
}

// RecordFailure counts a failure against the operation. It returns true
// when this failure transitioned the circuit from closed or half-open to
// open.
func (b *Breaker) RecordFailure(ctx context.Context, operation string) bool {
	rec, ok, err := b.store.Get(ctx, operation)
	if err != nil {
		slog.Error("circuit store get failed", "operation", operation, "error", err)
		return false
	}
	if !ok {
		rec = circuitstore.Record{Operation: operation, State: circuitstore.StateClosed}
	}

	rec.Failures++
	opened := false
	if rec.State == circuitstore.StateHalfOpen || rec.Failures >= b.maxFailures {
		if rec.State != circuitstore.StateOpen {
			opened = true
		}
		rec.State = circuitstore.StateOpen
		rec.OpenedAt = b.now().UnixMilli()
	}
	b.put(ctx, rec)
	return opened
}

// RecordSuccess clears the operation's failure count and closes its
// circuit. A single success is enough. It reports whether a record was
// actually cleared.
func (b *Breaker) RecordSuccess(ctx context.Context, operation string) bool {
	_, ok, err := b.store.Get(ctx, operation)
	if err != nil {
		slog.Error("circuit store get failed", "operation", operation, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := b.store.Delete(ctx, operation); err != nil {
		slog.Error("circuit store delete failed", "operation", operation, "error", err)
	}
	return true
}

func (b *Breaker) put(ctx context.Context, rec circuitstore.Record) {
	if err := b.store.Put(ctx, rec); err != nil {
		slog.Error("circuit store put failed", "operation", rec.Operation, "error", err)
	}
}
