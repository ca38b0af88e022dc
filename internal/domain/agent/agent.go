// Package agent defines the agent identity shared across the protocol.
package agent

// Identity identifies a participant in the agent-to-agent protocol.
// Immutable once constructed.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
