package resilience

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain/fault"
	"github.com/Strob0t/AgentRelay/internal/port/announce"
	"github.com/Strob0t/AgentRelay/internal/port/circuitstore"
	"github.com/Strob0t/AgentRelay/internal/port/recovery"
)

// Recorder receives coordinator observability callbacks. Implementations
// must be cheap and non-blocking.
type Recorder interface {
	ErrorRecorded(ctx context.Context, d fault.Details)
	CircuitOpened(ctx context.Context, operation string)
	RecoveryAttempted(ctx context.Context, d fault.Details, ok bool)
}

// Options controls a single HandleError call.
type Options struct {
	// AttemptRecovery opts in to strategy dispatch. Recovery is off by
	// default.
	AttemptRecovery bool
}

// Coordinator is the last line of defense for operational failures. It
// announces every error, feeds the circuit breaker, and optionally
// dispatches a recovery strategy. It never returns an error.
type Coordinator struct {
	mu         sync.Mutex
	breaker    *Breaker
	announcer  announce.Announcer
	strategies recovery.Registry
	recorder   Recorder
}

// NewCoordinator creates a recovery coordinator. strategies and recorder
// may be nil, disabling recovery dispatch and metrics respectively.
func NewCoordinator(store circuitstore.Store, ann announce.Announcer, strategies recovery.Registry, maxFailures int, openFor time.Duration) *Coordinator {
	return &Coordinator{
		breaker:    NewBreaker(store, maxFailures, openFor),
		announcer:  ann,
		strategies: strategies,
	}
}

// SetRecorder attaches an observability recorder. Must be called before
// the coordinator is shared.
func (c *Coordinator) SetRecorder(r Recorder) { c.recorder = r }

// SetClock replaces the breaker's clock. For tests.
func (c *Coordinator) SetClock(now func() time.Time) { c.breaker.now = now }

// HandleError processes one classified failure. It always announces
// exactly one error event, records the failure against the operation key,
// and returns whether a recovery attempt succeeded. With recovery not
// requested or no matching strategy it returns false.
func (c *Coordinator) HandleError(ctx context.Context, d fault.Details, opts Options) bool {
	if err := c.announcer.Announce(ctx, announce.EventError, d); err != nil {
		slog.Error("error announcement failed", "operation", d.Operation, "error", err)
	}
	if c.recorder != nil {
		c.recorder.ErrorRecorded(ctx, d)
	}

	op := d.Operation
	if op == "" {
		op = DefaultOperation
	}

	c.mu.Lock()
	opened := c.breaker.RecordFailure(ctx, op)
	c.mu.Unlock()

	if opened {
		slog.Warn("circuit opened", "operation", op, "category", d.Category, "code", d.Code)
		if err := c.announcer.Announce(ctx, announce.EventCircuitOpened, map[string]string{"operation": op}); err != nil {
			slog.Error("circuit announcement failed", "operation", op, "error", err)
		}
		if c.recorder != nil {
			c.recorder.CircuitOpened(ctx, op)
		}
	}

	if !opts.AttemptRecovery || c.strategies == nil {
		return false
	}

	strategy, ok := c.strategies.Lookup(d.Category, d.Code)
	if !ok {
		return false
	}

	recovered, err := strategy(ctx, d)
	if err != nil {
		slog.Error("recovery strategy failed", "operation", op, "category", d.Category, "code", d.Code, "error", err)
		recovered = false
	}
	if c.recorder != nil {
		c.recorder.RecoveryAttempted(ctx, d, recovered)
	}
	if recovered {
		c.RecordSuccess(ctx, op)
	}
	return recovered
}

// IsCircuitOpen is the call-site guard: while it returns true for an
// operation, new attempts must be rejected immediately instead of retried.
// An elapsed open window moves the circuit to half-open on this check.
func (c *Coordinator) IsCircuitOpen(ctx context.Context, operation string) bool {
	if operation == "" {
		operation = DefaultOperation
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.breaker.Allow(ctx, operation)
}

// RecordSuccess clears the failure count for an operation and closes its
// circuit, announcing the transition.
func (c *Coordinator) RecordSuccess(ctx context.Context, operation string) {
	if operation == "" {
		operation = DefaultOperation
	}
	c.mu.Lock()
	cleared := c.breaker.RecordSuccess(ctx, operation)
	c.mu.Unlock()

	if !cleared {
		return
	}
	if err := c.announcer.Announce(ctx, announce.EventCircuitClosed, map[string]string{"operation": operation}); err != nil {
		slog.Error("circuit announcement failed", "operation", operation, "error", err)
	}
}
