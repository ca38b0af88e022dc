// Package ristretto implements the replay-guard port using a
// dgraph-io/ristretto in-process cache.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Guard remembers message IDs for a TTL window. Entries may be evicted
// under memory pressure, so suppression is best effort.
type Guard struct {
	c   *ristretto.Cache[string, struct{}]
	ttl time.Duration
}

// NewGuard creates a replay guard retaining up to maxIDs message IDs for
// the given TTL.
func NewGuard(maxIDs int64, ttl time.Duration) (*Guard, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, struct{}]{
		NumCounters: maxIDs * 10,
		MaxCost:     maxIDs,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Guard{c: c, ttl: ttl}, nil
}

// Seen marks id as seen and reports whether it was already recorded.
func (g *Guard) Seen(_ context.Context, id string) (bool, error) {
	if _, found := g.c.Get(id); found {
		return true, nil
	}
	g.c.SetWithTTL(id, struct{}{}, 1, g.ttl)
	// Set is buffered; wait so a replay arriving immediately after the
	// original is still caught.
	g.c.Wait()
	return false, nil
}

// Close shuts down the cache and releases resources.
func (g *Guard) Close() {
	g.c.Close()
}
