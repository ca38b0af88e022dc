// Package capability defines the port for the agent capability registry.
package capability

import (
	"context"

	"github.com/Strob0t/AgentRelay/internal/domain/message"
)

// Registry is the source of the capabilities advertised in discovery
// responses and the agent card. An empty list is a valid answer.
type Registry interface {
	List(ctx context.Context) ([]message.Capability, error)
}
