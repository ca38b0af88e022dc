package memory

import (
	"context"
	"testing"

	"github.com/Strob0t/AgentRelay/internal/port/circuitstore"
)

func TestCircuitStoreRoundTrip(t *testing.T) {
	s := NewCircuitStore()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "send"); ok || err != nil {
		t.Fatalf("expected miss on empty store, ok=%v err=%v", ok, err)
	}

	rec := circuitstore.Record{Operation: "send", Failures: 2, State: circuitstore.StateClosed}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := s.Get(ctx, "send")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got != rec {
		t.Fatalf("expected %+v, got %+v", rec, got)
	}
}

func TestCircuitStorePutReplaces(t *testing.T) {
	s := NewCircuitStore()
	ctx := context.Background()

	s.Put(ctx, circuitstore.Record{Operation: "send", Failures: 1, State: circuitstore.StateClosed})
	s.Put(ctx, circuitstore.Record{Operation: "send", Failures: 5, State: circuitstore.StateOpen, OpenedAt: 99})

	got, _, _ := s.Get(ctx, "send")
	if got.Failures != 5 || got.State != circuitstore.StateOpen || got.OpenedAt != 99 {
		t.Fatalf("expected replacement, got %+v", got)
	}
	if s.Len() != 1 {
		t.Fatalf("expected one tracked operation, got %d", s.Len())
	}
}

func TestCircuitStoreDelete(t *testing.T) {
	s := NewCircuitStore()
	ctx := context.Background()

	s.Put(ctx, circuitstore.Record{Operation: "send", Failures: 1})
	if err := s.Delete(ctx, "send"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "send"); ok {
		t.Fatal("expected record gone")
	}
	// Deleting a missing key is a no-op.
	if err := s.Delete(ctx, "send"); err != nil {
		t.Fatalf("idempotent delete: %v", err)
	}
}
