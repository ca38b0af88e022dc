// Package announce defines the publication-sink port used to notify the
// rest of the system about protocol and error events.
package announce

import "context"

// Event names published by the protocol handler and the recovery
// coordinator. Consumers subscribe by name; this core never reads back.
const (
	EventMessageFormatted = "a2a:message:formatted"
	EventError            = "a2a:error"
	EventCircuitOpened    = "a2a:circuit:opened"
	EventCircuitClosed    = "a2a:circuit:closed"
)

// Announcer is the fire-and-forget publication sink. Implementations must
// not block indefinitely; callers log and discard announce failures.
type Announcer interface {
	Announce(ctx context.Context, event string, payload any) error
}

// Func adapts a function to the Announcer interface.
type Func func(ctx context.Context, event string, payload any) error

// Announce calls f.
func (f Func) Announce(ctx context.Context, event string, payload any) error {
	return f(ctx, event, payload)
}
