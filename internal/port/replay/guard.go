// Package replay defines the port for inbound message replay suppression.
package replay

import "context"

// Guard remembers recently seen message IDs so replayed deliveries can be
// rejected at the transport edge. Suppression is best effort: the guard
// may forget IDs under memory pressure, never the other way around.
type Guard interface {
	// Seen marks id as seen and reports whether it was already recorded
	// within the retention window.
	Seen(ctx context.Context, id string) (bool, error)
}
