package memory

import (
	"sync"

	"github.com/Strob0t/AgentRelay/internal/domain/fault"
	"github.com/Strob0t/AgentRelay/internal/port/recovery"
)

type strategyKey struct {
	category fault.Category
	code     fault.Code
}

// RecoveryRegistry is a map-backed recovery-strategy registry.
type RecoveryRegistry struct {
	mu         sync.RWMutex
	strategies map[strategyKey]recovery.Strategy
}

// NewRecoveryRegistry creates an empty recovery registry.
func NewRecoveryRegistry() *RecoveryRegistry {
	return &RecoveryRegistry{strategies: make(map[strategyKey]recovery.Strategy)}
}

// Register installs a strategy for the (category, code) pair, replacing
// any previous one.
func (r *RecoveryRegistry) Register(category fault.Category, code fault.Code, s recovery.Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[strategyKey{category, code}] = s
}

// Lookup returns the strategy registered for the pair, if any.
func (r *RecoveryRegistry) Lookup(category fault.Category, code fault.Code) (recovery.Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[strategyKey{category, code}]
	return s, ok
}
