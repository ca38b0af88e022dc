// Package delegate defines the port for the delegated-work executor.
package delegate

import (
	"context"
	"encoding/json"

	"github.com/Strob0t/AgentRelay/internal/domain/task"
)

// Executor performs the unit of work described by a delegated task. The
// protocol handler only records its outcome; it does not implement the
// work itself.
type Executor interface {
	Execute(ctx context.Context, t task.Task) (json.RawMessage, error)
}

// Func adapts a function to the Executor interface.
type Func func(ctx context.Context, t task.Task) (json.RawMessage, error)

// Execute calls f.
func (f Func) Execute(ctx context.Context, t task.Task) (json.RawMessage, error) {
	return f(ctx, t)
}
