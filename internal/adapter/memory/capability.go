package memory

import (
	"context"

	"github.com/Strob0t/AgentRelay/internal/domain/message"
)

// CapabilityRegistry is a static capability registry seeded at startup.
// An empty registry is valid: discovery then answers with an empty list.
type CapabilityRegistry struct {
	caps []message.Capability
}

// NewCapabilityRegistry creates a registry advertising the given
// capabilities.
func NewCapabilityRegistry(caps []message.Capability) *CapabilityRegistry {
	return &CapabilityRegistry{caps: caps}
}

// List returns the advertised capabilities.
func (r *CapabilityRegistry) List(_ context.Context) ([]message.Capability, error) {
	out := make([]message.Capability, len(r.caps))
	copy(out, r.caps)
	return out, nil
}
