// Package message defines the agent-to-agent protocol message entity and
// its validator.
package message

import (
	"encoding/json"

	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
)

// Type identifies the kind of protocol message.
type Type string

const (
	TypeRequest             Type = "request"
	TypeResponse            Type = "response"
	TypeError               Type = "error"
	TypeBroadcast           Type = "broadcast"
	TypeCapabilityDiscovery Type = "capability_discovery"
	TypeCapabilityResponse  Type = "capability_response"
)

// Known reports whether t is one of the defined message types.
func (t Type) Known() bool {
	switch t {
	case TypeRequest, TypeResponse, TypeError, TypeBroadcast,
		TypeCapabilityDiscovery, TypeCapabilityResponse:
		return true
	}
	return false
}

// BroadcastCapable reports whether a message of this type may omit its
// recipient. Discovery requests, generic broadcasts, and error envelopes
// are addressed to any interested listener.
func (t Type) BroadcastCapable() bool {
	switch t {
	case TypeBroadcast, TypeCapabilityDiscovery, TypeError:
		return true
	}
	return false
}

// Metadata carries delivery metadata for a message.
type Metadata struct {
	// Timestamp is epoch milliseconds at format time.
	Timestamp int64 `json:"timestamp"`
	// CorrelationID links a request to its eventual response.
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Capabilities declares what a request requires from its recipient.
type Capabilities struct {
	Required []string `json:"required"`
	Optional []string `json:"optional,omitempty"`
}

// ErrorPayload is the error body of an error-type message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Message is the core protocol entity exchanged between agents.
// A formatted message always has ID, Sender, Content, and
// Metadata.Timestamp set; Recipient is nil for broadcasts.
type Message struct {
	ID           string          `json:"id"`
	Type         Type            `json:"type"`
	Sender       *agent.Identity `json:"sender"`
	Recipient    *agent.Identity `json:"recipient"`
	Content      string          `json:"content"`
	Metadata     *Metadata       `json:"metadata"`
	Task         *task.Task      `json:"task,omitempty"`
	Capabilities *Capabilities   `json:"capabilities,omitempty"`
	Error        *ErrorPayload   `json:"error,omitempty"`
}

// CorrelationID returns the metadata correlation ID, or "" when unset.
func (m *Message) CorrelationID() string {
	if m == nil || m.Metadata == nil {
		return ""
	}
	return m.Metadata.CorrelationID
}

// NegotiationOutcome is the typed content of a negotiation response.
type NegotiationOutcome struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// Capability describes a single advertised skill of an agent.
// A capability-response message carries a serialized list of these.
type Capability struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// EncodeContent serializes a typed payload into message content.
func EncodeContent(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeContent deserializes the message content into a typed payload.
func (m *Message) DecodeContent(v any) error {
	return json.Unmarshal([]byte(m.Content), v)
}
