package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/AgentRelay/internal/adapter/memory"
	"github.com/Strob0t/AgentRelay/internal/domain/fault"
	"github.com/Strob0t/AgentRelay/internal/port/announce"
	"github.com/Strob0t/AgentRelay/internal/port/recovery"
)

// recordingAnnouncer captures announced events for assertions.
type recordingAnnouncer struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (a *recordingAnnouncer) Announce(_ context.Context, event string, _ any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	if a.fail {
		return errors.New("sink unavailable")
	}
	return nil
}

func (a *recordingAnnouncer) count(event string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, e := range a.events {
		if e == event {
			n++
		}
	}
	return n
}

func newTestCoordinator(strategies recovery.Registry) (*Coordinator, *recordingAnnouncer) {
	ann := &recordingAnnouncer{}
	c := NewCoordinator(memory.NewCircuitStore(), ann, strategies, 5, 30*time.Second)
	return c, ann
}

func details(op string) fault.Details {
	return fault.NewDetails(errors.New("connection refused"), fault.Context{Operation: op})
}

func TestHandleErrorDefaultReturnsFalse(t *testing.T) {
	c, ann := newTestCoordinator(nil)

	got := c.HandleError(context.Background(), details("send"), Options{})
	if got {
		t.Fatal("expected false without recovery")
	}
	if n := ann.count(announce.EventError); n != 1 {
		t.Fatalf("expected exactly one error event, got %d", n)
	}
}

func TestCircuitOpensAtThreshold(t *testing.T) {
	c, ann := newTestCoordinator(nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		c.HandleError(ctx, details("send"), Options{})
	}
	if c.IsCircuitOpen(ctx, "send") {
		t.Fatal("circuit should stay closed below threshold")
	}

	c.HandleError(ctx, details("send"), Options{})
	if !c.IsCircuitOpen(ctx, "send") {
		t.Fatal("circuit should open at 5 consecutive failures")
	}
	if n := ann.count(announce.EventCircuitOpened); n != 1 {
		t.Fatalf("expected one circuit-opened event, got %d", n)
	}
}

func TestCircuitKeysAreIndependent(t *testing.T) {
	c, _ := newTestCoordinator(nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c.HandleError(ctx, details("send"), Options{})
	}
	if c.IsCircuitOpen(ctx, "negotiate") {
		t.Fatal("unrelated operation should have a fresh closed circuit")
	}
}

func TestCircuitResetsAfterOpenWindow(t *testing.T) {
	c, _ := newTestCoordinator(nil)
	ctx := context.Background()

	now := time.Now()
	c.SetClock(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		c.HandleError(ctx, details("send"), Options{})
	}
	if !c.IsCircuitOpen(ctx, "send") {
		t.Fatal("circuit should be open")
	}

	now = now.Add(31 * time.Second)
	if c.IsCircuitOpen(ctx, "send") {
		t.Fatal("circuit should allow a trial after the open window")
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	c, _ := newTestCoordinator(nil)
	ctx := context.Background()

	now := time.Now()
	c.SetClock(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		c.HandleError(ctx, details("send"), Options{})
	}
	now = now.Add(31 * time.Second)
	if c.IsCircuitOpen(ctx, "send") {
		t.Fatal("expected half-open trial to be allowed")
	}

	// One failure in half-open reopens immediately.
	c.HandleError(ctx, details("send"), Options{})
	if !c.IsCircuitOpen(ctx, "send") {
		t.Fatal("circuit should reopen after half-open failure")
	}
}

func TestSuccessClearsFailureCount(t *testing.T) {
	c, _ := newTestCoordinator(nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		c.HandleError(ctx, details("send"), Options{})
	}
	c.RecordSuccess(ctx, "send")

	for i := 0; i < 4; i++ {
		c.HandleError(ctx, details("send"), Options{})
	}
	if c.IsCircuitOpen(ctx, "send") {
		t.Fatal("success should have reset the failure count")
	}
}

func TestDefaultOperationKey(t *testing.T) {
	c, _ := newTestCoordinator(nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c.HandleError(ctx, fault.NewDetails(errors.New("boom"), fault.Context{}), Options{})
	}
	if !c.IsCircuitOpen(ctx, "") {
		t.Fatal("failures without an operation should share the default key")
	}
}

func TestRecoveryDispatch(t *testing.T) {
	reg := memory.NewRecoveryRegistry()
	called := false
	reg.Register(fault.CategoryNetwork, fault.CodeNetworkUnavailable,
		func(_ context.Context, _ fault.Details) (bool, error) {
			called = true
			return true, nil
		})

	c, _ := newTestCoordinator(reg)
	got := c.HandleError(context.Background(), details("send"), Options{AttemptRecovery: true})
	if !called {
		t.Fatal("expected strategy to be invoked")
	}
	if !got {
		t.Fatal("expected recovery success to be returned")
	}
}

func TestRecoveryNotAttemptedWithoutOptIn(t *testing.T) {
	reg := memory.NewRecoveryRegistry()
	called := false
	reg.Register(fault.CategoryNetwork, fault.CodeNetworkUnavailable,
		func(_ context.Context, _ fault.Details) (bool, error) {
			called = true
			return true, nil
		})

	c, _ := newTestCoordinator(reg)
	if got := c.HandleError(context.Background(), details("send"), Options{}); got {
		t.Fatal("expected false without opt-in")
	}
	if called {
		t.Fatal("strategy must not run without opt-in")
	}
}

func TestRecoveryNoMatchingStrategy(t *testing.T) {
	c, _ := newTestCoordinator(memory.NewRecoveryRegistry())
	got := c.HandleError(context.Background(), details("send"), Options{AttemptRecovery: true})
	if got {
		t.Fatal("expected false with no matching strategy")
	}
}

func TestRecoveryStrategyErrorYieldsFalse(t *testing.T) {
	reg := memory.NewRecoveryRegistry()
	reg.Register(fault.CategoryNetwork, fault.CodeNetworkUnavailable,
		func(_ context.Context, _ fault.Details) (bool, error) {
			return true, errors.New("recovery exploded")
		})

	c, _ := newTestCoordinator(reg)
	if got := c.HandleError(context.Background(), details("send"), Options{AttemptRecovery: true}); got {
		t.Fatal("a failing strategy must not report success")
	}
}

func TestAnnouncerFailureDoesNotPropagate(t *testing.T) {
	ann := &recordingAnnouncer{fail: true}
	c := NewCoordinator(memory.NewCircuitStore(), ann, nil, 5, 30*time.Second)

	// Must not panic and must still record the failure.
	for i := 0; i < 5; i++ {
		c.HandleError(context.Background(), details("send"), Options{})
	}
	if !c.IsCircuitOpen(context.Background(), "send") {
		t.Fatal("failures must be recorded even when the sink is down")
	}
}
