// Package recovery defines the port for recovery-strategy lookup.
package recovery

import (
	"context"

	"github.com/Strob0t/AgentRelay/internal/domain/fault"
)

// Strategy attempts to recover from a classified failure. It returns
// whether the recovery succeeded.
type Strategy func(ctx context.Context, d fault.Details) (bool, error)

// Registry maps (category, code) pairs to recovery strategies.
type Registry interface {
	// Lookup returns the strategy registered for the pair, if any.
	Lookup(category fault.Category, code fault.Code) (Strategy, bool)
}
